package classifier

import (
	"testing"

	"fjacquet/eod-recon/internal/logging"
	"fjacquet/eod-recon/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func row(company, method, premium, fee, total string) models.Transaction {
	return models.NewTransactionBuilder().
		WithReceipt("1").
		WithType("END").
		WithCompany(company).
		WithMethod(method).
		WithAmounts(premium, fee, total).
		Build()
}

func TestClassify_FeeBuckets(t *testing.T) {
	c := NewDefault()

	tests := []struct {
		name     string
		company  string
		method   string
		expected Bucket
	}{
		{"broker fee", "Broker Fee", "Cash", BucketNbRwFee},
		{"broker fee with suffix", "Agency Broker Fee - NB", "Cash", BucketNbRwFee},
		{"endorsement", "Endorsement Fee", "Cash", BucketEnFee},
		{"reinstatement", "Reinstatement Fee", "Cash", BucketReissueFee},
		{"renewal", "Renewal Fee", "Cash", BucketRenewalFee},
		{"payment", "Payment Fee", "Credit Card", BucketPysFee},
		{"registration", "DMV Registration Fee", "Cash", BucketRegistrationFee},
		{"convenience", "Convenience Fee (card)", "Credit Card", BucketConvenienceFee},
		{"tax prep", "Tax Prep", "Cash", BucketTaxPrepFee},
		{"tax estimate", "Tax Estimate 2024", "Cash", BucketTaxPrepFee},
		{"tax prep by wire excluded", "Tax Prep", "Wire Transfer", BucketNone},
		{"tax alone", "Tax", "Cash", BucketNone},
		{"marker case matters", "broker fee", "Cash", BucketNone},
		{"carrier premium", "Progressive", "Cash", BucketNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, c.Classify(row(tt.company, tt.method, "0", "1", "1")).FeeBucket())
		})
	}
}

func TestClassify_SeveralMarkers(t *testing.T) {
	c := NewDefault()

	cls := c.Classify(row("Payment Fee / Renewal Fee", "Cash", "0", "10", "10"))
	assert.Equal(t, []Bucket{BucketRenewalFee, BucketPysFee}, cls.FeeBuckets)
	assert.Equal(t, BucketRenewalFee, cls.FeeBucket())
	assert.True(t, cls.Has(BucketPysFee))
	assert.False(t, cls.Has(BucketNbRwFee))

	var s models.Summary
	c.Accumulate(&s, row("Payment Fee / Renewal Fee", "Cash", "0", "10", "10"))
	assert.True(t, s.RenewalFee.Equal(decimal.NewFromInt(10)))
	assert.True(t, s.PysFee.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, 1, s.RenewalCount)
	assert.Equal(t, 1, s.PysCount)
	assert.True(t, s.CashFee.Equal(decimal.NewFromInt(10)), "payment columns count the row once")
}

func TestClassify_TaxProductMatchedOnce(t *testing.T) {
	c := New(Options{TaxProducts: []string{"Prep Plus"}}, logging.NewMockLogger())
	cls := c.Classify(row("Tax Prep Plus", "Cash", "0", "30", "30"))
	assert.Equal(t, []Bucket{BucketTaxPrepFee}, cls.FeeBuckets)
}

func TestClassify_DMVPremium(t *testing.T) {
	c := NewDefault()

	assert.True(t, c.Classify(row("DMV - Registration Service", "Cash", "100", "0", "100")).DMVPremium)
	assert.False(t, c.Classify(row("DMV Registration Fee", "Cash", "0", "10", "10")).DMVPremium)
	assert.False(t, c.Classify(row("Dmv - Registration Service", "Cash", "100", "0", "100")).DMVPremium)
}

func TestClassify_Method(t *testing.T) {
	c := NewDefault()

	cash := c.Classify(row("Progressive", "Cash", "1", "0", "1"))
	assert.True(t, cash.Cash)
	assert.False(t, cash.CreditCard)

	card := c.Classify(row("Progressive", "Visa Credit Card", "1", "0", "1"))
	assert.True(t, card.CreditCard)
	assert.False(t, card.Cash)

	check := c.Classify(row("Progressive", "Check", "1", "0", "1"))
	assert.False(t, check.Cash)
	assert.False(t, check.CreditCard)
}

func TestAccumulate(t *testing.T) {
	c := NewDefault()
	var s models.Summary

	nb := row("Broker Fee", "Cash", "500", "50", "550")
	nb.Type = "NEW"
	c.Accumulate(&s, nb)

	c.Accumulate(&s, row("Endorsement Fee", "Credit Card", "0", "25", "25"))
	c.Accumulate(&s, row("Endorsement Fee", "Credit Card", "0", "-5", "-5"))
	c.Accumulate(&s, row("DMV Registration Fee", "Cash", "0", "15", "15"))
	c.Accumulate(&s, row("DMV - Registration Service", "Cash", "80", "0", "80"))

	assert.Equal(t, 5, s.TransactionCount)
	assert.Equal(t, 1, s.NbRwCount)
	assert.Equal(t, 0, s.EnCount, "a refund row offsets the count")
	assert.Equal(t, 1, s.DMVCount)
	assert.True(t, s.NbRwFee.Equal(decimal.NewFromInt(50)))
	assert.True(t, s.EnFee.Equal(decimal.NewFromInt(20)))
	assert.True(t, s.RegistrationFee.Equal(decimal.NewFromInt(15)))
	assert.True(t, s.DMVPremium.Equal(decimal.NewFromInt(80)))
	assert.True(t, s.CashPremium.Equal(decimal.NewFromInt(580)))
	assert.True(t, s.CashFee.Equal(decimal.NewFromInt(65)))
	assert.True(t, s.CreditFee.Equal(decimal.NewFromInt(20)))
	assert.True(t, s.CreditPaymentTotal.Equal(decimal.NewFromInt(20)))
}

func TestAccumulate_NegativeNewBusinessNotCounted(t *testing.T) {
	c := NewDefault()
	var s models.Summary

	tx := row("Broker Fee", "Cash", "-500", "-50", "-550")
	tx.Type = "NEW"
	c.Accumulate(&s, tx)

	assert.Equal(t, 0, s.NbRwCount)
	assert.True(t, s.CashPremium.Equal(decimal.NewFromInt(-500)))
}

func TestTaxProducts(t *testing.T) {
	c := New(Options{TaxProducts: []string{"Refund Advance", " "}}, logging.NewMockLogger())

	assert.Equal(t, BucketTaxPrepFee, c.Classify(row("Refund Advance", "Cash", "0", "30", "30")).FeeBucket())
	assert.Equal(t, BucketNone, c.Classify(row("Refund Advance", "Wire", "0", "30", "30")).FeeBucket())
	assert.Len(t, c.Markers().FeeRules, len(DefaultMarkers().FeeRules)+1)
}

func TestLegacyMarkers(t *testing.T) {
	logger := logging.NewMockLogger()
	c := New(Options{Legacy: true}, logger)

	assert.Equal(t, BucketConvenienceFee, c.Classify(row("Convenience Fee (card)", "Credit Card", "0", "3", "3")).FeeBucket())
	assert.Equal(t, BucketNone, c.Classify(row("Convenience Fee", "Credit Card", "0", "3", "3")).FeeBucket())
	assert.True(t, c.Classify(row("Dmv - Registration Service", "Cash", "10", "0", "10")).DMVPremium)
	assert.True(t, logger.HasEntry("WARN", "Legacy fee marker differs from default table"))
}

func TestMarkerDiff(t *testing.T) {
	assert.Empty(t, MarkerDiff(DefaultMarkers(), DefaultMarkers()))

	diffs := MarkerDiff(DefaultMarkers(), LegacyMarkers())
	require.Len(t, diffs, 2)
	assert.Equal(t, BucketConvenienceFee, diffs[0].Bucket)
	assert.Equal(t, "Convenience Fee", diffs[0].Left)
	assert.Equal(t, "Convenience Fee (c", diffs[0].Right)
	assert.Equal(t, Bucket("dmv_premium"), diffs[1].Bucket)
	assert.Equal(t, "Dmv - Registration S", diffs[1].Right)
}
