// Package models provides the data structures used throughout the application.
package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Transaction is one line of an agent's daily transaction log or of a Matrix export.
type Transaction struct {
	Receipt      string          `json:"receipt" yaml:"receipt"`
	CustomerID   string          `json:"customer_id" yaml:"customer_id"`
	CustomerName string          `json:"customer_name" yaml:"customer_name"`
	CustomerType string          `json:"customer_type,omitempty" yaml:"customer_type,omitempty"`
	OccurredAt   string          `json:"occurred_at" yaml:"occurred_at"` // as written in the source
	CSRName      string          `json:"csr_name" yaml:"csr_name"`
	Office       string          `json:"office" yaml:"office"`           // canonical code, e.g. CA010
	ReportDate   string          `json:"report_date" yaml:"report_date"` // YYYY-MM-DD, "" when unparseable
	Type         string          `json:"type" yaml:"type"`
	Company      string          `json:"company" yaml:"company"` // carries the fee label
	PolicyNumber string          `json:"policy_number" yaml:"policy_number"`
	Financed     string          `json:"financed,omitempty" yaml:"financed,omitempty"`
	Reference    string          `json:"reference,omitempty" yaml:"reference,omitempty"`
	Method       string          `json:"method" yaml:"method"`
	Premium      decimal.Decimal `json:"premium" yaml:"premium"`
	Fee          decimal.Decimal `json:"fee" yaml:"fee"`
	Total        decimal.Decimal `json:"total" yaml:"total"`
	ImportID     string          `json:"import_id,omitempty" yaml:"import_id,omitempty"`
}

// IsNewBusiness reports whether the row is a NEW or RWR policy.
func (t Transaction) IsNewBusiness() bool {
	typ := strings.ToUpper(strings.TrimSpace(t.Type))
	return typ == TypeNew || typ == TypeRewrite
}

// CloneTransactions returns a copy of the slice so callers can't alias stored rows.
func CloneTransactions(txs []Transaction) []Transaction {
	if txs == nil {
		return nil
	}
	out := make([]Transaction, len(txs))
	copy(out, txs)
	return out
}
