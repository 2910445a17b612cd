package eod

import (
	"fjacquet/eod-recon/internal/classifier"
	"fjacquet/eod-recon/internal/models"

	"github.com/shopspring/decimal"
)

// Commissionable returns the A/R adjusted view of a report: the corrected
// receipts are aggregated on their own (no expenses, no referrals) and
// subtracted from full on every field except the deposits.
// The result is for display only.
func (e *Engine) Commissionable(full models.Summary, washed []models.Transaction, corrections []models.Correction) models.Summary {
	if len(corrections) == 0 {
		return full
	}

	flagged := make(map[string]bool, len(corrections))
	for _, c := range corrections {
		if c.ReceiptNumber != "" {
			flagged[c.ReceiptNumber] = true
		}
	}

	var subset []models.Transaction
	for _, tx := range washed {
		if flagged[tx.Receipt] {
			subset = append(subset, tx)
		}
	}

	correction := e.Aggregate(subset, decimal.Zero, nil)
	return full.MinusExceptDeposits(correction)
}

// PopulateCorrections fills the derived fields of each correction from the
// report's transactions with the same receipt. Hand-entered amounts are
// overwritten. Corrections without a receipt number are dropped.
func (e *Engine) PopulateCorrections(raw []models.Transaction, corrections []models.Correction) []models.Correction {
	out := make([]models.Correction, 0, len(corrections))
	for _, c := range corrections {
		if c.ReceiptNumber == "" {
			continue
		}
		filled := models.Correction{
			ReceiptNumber: c.ReceiptNumber,
			Premium:       decimal.Zero,
			Fee:           decimal.Zero,
			CCFee:         decimal.Zero,
		}
		for _, tx := range raw {
			if tx.Receipt != c.ReceiptNumber {
				continue
			}
			filled.Premium = filled.Premium.Add(tx.Premium)
			filled.Fee = filled.Fee.Add(tx.Fee)

			cls := e.classifier.Classify(tx)
			if cls.Has(classifier.BucketConvenienceFee) {
				filled.CCFee = filled.CCFee.Add(tx.Fee)
			}
			if filled.FeeType == "" && cls.FeeBucket() != classifier.BucketNone {
				filled.FeeType = string(cls.FeeBucket())
			}
		}
		out = append(out, filled)
	}
	return out
}
