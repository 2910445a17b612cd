package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSummary_Plus(t *testing.T) {
	a := Summary{NbRwCount: 1, CashPremium: decimal.NewFromInt(100), TrustDeposit: decimal.NewFromInt(120)}
	b := Summary{NbRwCount: 2, CashPremium: decimal.NewFromInt(50), TrustDeposit: decimal.NewFromInt(30)}

	sum := a.Plus(b)

	assert.Equal(t, 3, sum.NbRwCount)
	assert.True(t, sum.CashPremium.Equal(decimal.NewFromInt(150)))
	assert.True(t, sum.TrustDeposit.Equal(decimal.NewFromInt(150)))
	assert.Equal(t, 1, a.NbRwCount, "receiver must not be mutated")
}

func TestSummary_MinusExceptDeposits(t *testing.T) {
	full := Summary{
		NbRwCount:      2,
		NbRwFee:        decimal.NewFromInt(100),
		TrustDeposit:   decimal.NewFromInt(500),
		DMVDeposit:     decimal.NewFromInt(10),
		RevenueDeposit: decimal.NewFromInt(60),
	}
	correction := Summary{
		NbRwCount:      1,
		NbRwFee:        decimal.NewFromInt(40),
		TrustDeposit:   decimal.NewFromInt(200),
		DMVDeposit:     decimal.NewFromInt(10),
		RevenueDeposit: decimal.NewFromInt(20),
	}

	out := full.MinusExceptDeposits(correction)

	assert.Equal(t, 1, out.NbRwCount)
	assert.True(t, out.NbRwFee.Equal(decimal.NewFromInt(60)))
	assert.True(t, out.TrustDeposit.Equal(full.TrustDeposit))
	assert.True(t, out.DMVDeposit.Equal(full.DMVDeposit))
	assert.True(t, out.RevenueDeposit.Equal(full.RevenueDeposit))
}

func TestSummary_Equal(t *testing.T) {
	a := Summary{CashFee: decimal.RequireFromString("1.50")}
	b := Summary{CashFee: decimal.RequireFromString("1.5")}
	assert.True(t, a.Equal(b))
	b.DMVCount = 1
	assert.False(t, a.Equal(b))
}

func TestReport_CloneAndKey(t *testing.T) {
	r := Report{
		AgentEmail:      " Agent@Example.com ",
		Office:          "CA010",
		ReportDate:      "2025-03-14",
		RawTransactions: []Transaction{{Receipt: "1"}},
		ReceiptURLs:     []string{"a"},
	}
	c := r.Clone()
	c.RawTransactions[0].Receipt = "2"
	c.ReceiptURLs[0] = "b"

	assert.Equal(t, "1", r.RawTransactions[0].Receipt)
	assert.Equal(t, "a", r.ReceiptURLs[0])
	assert.Equal(t, ReportKey{AgentEmail: "agent@example.com", Office: "CA010", ReportDate: "2025-03-14"}, r.Key())
}

func TestTransactionBuilder(t *testing.T) {
	tx := NewTransactionBuilder().
		WithReceipt("100").
		WithType(" new ").
		WithCompany("Broker Fee").
		WithMethod("Cash").
		WithOffice("CA010 - Fresno").
		WithOccurredAt("3/14/2025 4:05 PM").
		WithAmounts("500", "50", "1,550.00").
		WithImportID().
		Build()

	assert.Equal(t, "CA010", tx.Office)
	assert.Equal(t, "2025-03-14", tx.ReportDate)
	assert.True(t, tx.Total.Equal(decimal.NewFromInt(1550)))
	assert.True(t, tx.IsNewBusiness())
	assert.NotEmpty(t, tx.ImportID)
}
