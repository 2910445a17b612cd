package reconcile

import (
	"fjacquet/eod-recon/internal/models"
	"fjacquet/eod-recon/internal/textutils"
)

type receiptIndex struct {
	receipts  map[string]bool
	policies  map[string]bool
	customers map[string]bool
}

func customerKey(tx models.Transaction) string {
	name := textutils.NormalizeName(tx.CustomerName)
	if name == "" {
		return ""
	}
	return name + "|" + tx.Premium.StringFixed(2)
}

func indexReport(raw []models.Transaction) receiptIndex {
	idx := receiptIndex{
		receipts:  make(map[string]bool),
		policies:  make(map[string]bool),
		customers: make(map[string]bool),
	}
	for _, tx := range raw {
		if tx.Receipt != "" {
			idx.receipts[tx.Receipt] = true
		}
		if tx.PolicyNumber != "" {
			idx.policies[tx.PolicyNumber] = true
		}
		if k := customerKey(tx); k != "" {
			idx.customers[k] = true
		}
	}
	return idx
}

func (idx receiptIndex) contains(tx models.Transaction) bool {
	if tx.Receipt != "" && idx.receipts[tx.Receipt] {
		return true
	}
	if tx.PolicyNumber != "" && idx.policies[tx.PolicyNumber] {
		return true
	}
	if k := customerKey(tx); k != "" && idx.customers[k] {
		return true
	}
	return false
}

// missingReceipts lists the imported rows that match the stored report on
// none of receipt, policy number, or customer name plus premium.
func missingReceipts(imported, stored []models.Transaction) []models.MissingReceipt {
	idx := indexReport(stored)
	var out []models.MissingReceipt
	for _, tx := range imported {
		if idx.contains(tx) {
			continue
		}
		out = append(out, models.MissingReceipt{
			Receipt:      tx.Receipt,
			PolicyNumber: tx.PolicyNumber,
			CustomerName: tx.CustomerName,
			Premium:      tx.Premium,
			Fee:          tx.Fee,
			Total:        tx.Total,
			ImportID:     tx.ImportID,
		})
	}
	return out
}
