// Package eod implements the end-of-day pipeline: wash filtering, summary
// aggregation and the A/R commissionable view.
package eod

import (
	"fjacquet/eod-recon/internal/currencyutils"
	"fjacquet/eod-recon/internal/models"

	"github.com/shopspring/decimal"
)

// WashThreshold is the net total below which a receipt counts as voided.
var WashThreshold = currencyutils.Cents

// Wash drops every transaction whose receipt nets to less than WashThreshold
// in absolute value. Rows without a receipt are always kept. Order is
// preserved; the washed receipts are returned in order of first appearance.
func Wash(txs []models.Transaction) (kept []models.Transaction, washed []string) {
	sums := make(map[string]decimal.Decimal)
	var order []string
	for _, tx := range txs {
		if tx.Receipt == "" {
			continue
		}
		if _, ok := sums[tx.Receipt]; !ok {
			order = append(order, tx.Receipt)
		}
		sums[tx.Receipt] = sums[tx.Receipt].Add(tx.Total)
	}

	isWashed := make(map[string]bool)
	for _, receipt := range order {
		if sums[receipt].Abs().LessThan(WashThreshold) {
			isWashed[receipt] = true
			washed = append(washed, receipt)
		}
	}

	kept = make([]models.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Receipt != "" && isWashed[tx.Receipt] {
			continue
		}
		kept = append(kept, tx)
	}
	return kept, washed
}
