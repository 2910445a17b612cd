package eod

import (
	"fjacquet/eod-recon/internal/classifier"
	"fjacquet/eod-recon/internal/models"

	"github.com/shopspring/decimal"
)

var (
	corpFeePerPolicy = decimal.NewFromInt(20)
	royaltyRate      = decimal.RequireFromString("0.20")
)

// Engine runs the summary pipeline with a given classifier.
type Engine struct {
	classifier *classifier.Classifier
}

// NewEngine creates an Engine. A nil classifier selects the default marker table.
func NewEngine(c *classifier.Classifier) *Engine {
	if c == nil {
		c = classifier.NewDefault()
	}
	return &Engine{classifier: c}
}

// Classifier returns the classifier in use.
func (e *Engine) Classifier() *classifier.Classifier {
	return e.classifier
}

// Summarize washes raw rows and aggregates what is left.
func (e *Engine) Summarize(raw []models.Transaction, expenses decimal.Decimal, referrals []models.Referral) (models.Summary, []models.Transaction) {
	kept, _ := Wash(raw)
	return e.Aggregate(kept, expenses, referrals), kept
}

// Aggregate folds already-washed transactions into a Summary. It is a pure
// function of its inputs.
func (e *Engine) Aggregate(washed []models.Transaction, expenses decimal.Decimal, referrals []models.Referral) models.Summary {
	var s models.Summary
	for _, tx := range washed {
		e.classifier.Accumulate(&s, tx)
	}

	referralsPaid := decimal.Zero
	for _, r := range referrals {
		referralsPaid = referralsPaid.Add(r.Amount)
	}

	s.Expenses = expenses
	s.TotalReferralsPaid = referralsPaid
	s.TotalPremium = s.CashPremium.Add(s.CreditPremium)
	s.TotalFee = s.CashFee.Add(s.CreditFee)
	s.TotalCreditPayment = s.CreditPremium.Add(s.CreditFee)
	s.NbRwCorpFee = decimal.NewFromInt(int64(s.NbRwCount)).Mul(corpFeePerPolicy)
	s.FeeRoyalty = s.PysFee.Add(s.ReissueFee).Add(s.RenewalFee).Add(s.EnFee).Mul(royaltyRate)

	s.TrustDeposit = s.TotalPremium.Add(s.ConvenienceFee).Add(s.NbRwCorpFee).Add(s.FeeRoyalty).
		Sub(s.DMVPremium.Add(s.TotalCreditPayment))
	s.DMVDeposit = s.DMVPremium
	s.RevenueDeposit = s.TotalFee.
		Sub(s.ConvenienceFee.Add(s.NbRwCorpFee).Add(s.FeeRoyalty).Add(expenses).Add(referralsPaid))

	return s
}

// CashDifference compares the cash counted in hand with the cash the day's
// transactions should have produced.
func CashDifference(s models.Summary, totalCashInHand decimal.Decimal) decimal.Decimal {
	expected := s.CashPremium.Add(s.CashFee).Sub(s.Expenses).Sub(s.TotalReferralsPaid)
	return totalCashInHand.Sub(expected)
}
