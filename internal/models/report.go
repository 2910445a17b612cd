package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Referral is a referral payout deducted from the revenue deposit.
type Referral struct {
	Name   string          `json:"name" yaml:"name"`
	Amount decimal.Decimal `json:"amount" yaml:"amount"`
	Note   string          `json:"note,omitempty" yaml:"note,omitempty"`
}

// Correction flags a receipt as an A/R correction. Premium, Fee, CCFee and
// FeeType are derived from the report's own transactions.
type Correction struct {
	ReceiptNumber string          `json:"receipt_number" yaml:"receipt_number"`
	Premium       decimal.Decimal `json:"premium" yaml:"premium"`
	Fee           decimal.Decimal `json:"fee" yaml:"fee"`
	CCFee         decimal.Decimal `json:"cc_fee" yaml:"cc_fee"`
	FeeType       string          `json:"fee_type,omitempty" yaml:"fee_type,omitempty"`
}

// ReportKey identifies the single report allowed per agent, office and day.
type ReportKey struct {
	AgentEmail string
	Office     string
	ReportDate string
}

// NewReportKey builds a key with a case-folded email.
func NewReportKey(email, office, date string) ReportKey {
	return ReportKey{
		AgentEmail: strings.ToLower(strings.TrimSpace(email)),
		Office:     office,
		ReportDate: date,
	}
}

// Report is an agent's end-of-day submission for one office-day.
type Report struct {
	ID              string          `json:"id" yaml:"id"`
	AgentEmail      string          `json:"agent_email" yaml:"agent_email"`
	AgentName       string          `json:"agent_name" yaml:"agent_name"`
	Office          string          `json:"office" yaml:"office"`
	ReportDate      string          `json:"report_date" yaml:"report_date"`
	RawTransactions []Transaction   `json:"raw_transactions" yaml:"raw_transactions"`
	Summary         Summary         `json:"summary" yaml:"summary"`
	Expenses        decimal.Decimal `json:"expenses" yaml:"expenses"`
	Referrals       []Referral      `json:"referrals" yaml:"referrals"`
	ARCorrections   []Correction    `json:"ar_corrections" yaml:"ar_corrections"`
	TotalCashInHand decimal.Decimal `json:"total_cash_in_hand" yaml:"total_cash_in_hand"`
	CashDifference  decimal.Decimal `json:"cash_difference" yaml:"cash_difference"`
	CashVerified    bool            `json:"cash_verified" yaml:"cash_verified"`
	DepositVerified bool            `json:"deposit_verified" yaml:"deposit_verified"`
	VerifiedBy      string          `json:"verified_by,omitempty" yaml:"verified_by,omitempty"`
	VerifiedAt      *time.Time      `json:"verified_at,omitempty" yaml:"verified_at,omitempty"`
	ReceiptURLs     []string        `json:"receipt_urls" yaml:"receipt_urls"`
	CreatedAt       time.Time       `json:"created_at" yaml:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" yaml:"updated_at"`
}

// Key returns the uniqueness key of the report.
func (r Report) Key() ReportKey {
	return NewReportKey(r.AgentEmail, r.Office, r.ReportDate)
}

// Clone returns a deep copy of the report's slices.
func (r Report) Clone() Report {
	out := r
	out.RawTransactions = CloneTransactions(r.RawTransactions)
	out.Referrals = append([]Referral(nil), r.Referrals...)
	out.ARCorrections = append([]Correction(nil), r.ARCorrections...)
	out.ReceiptURLs = append([]string(nil), r.ReceiptURLs...)
	if r.VerifiedAt != nil {
		at := *r.VerifiedAt
		out.VerifiedAt = &at
	}
	return out
}

// ReportFilter selects reports by inclusive date range and office. Empty fields match everything.
type ReportFilter struct {
	From   string
	To     string
	Office string
}

// EditEvent is one append-only audit entry for a report.
type EditEvent struct {
	ID       string    `json:"id" yaml:"id"`
	ReportID string    `json:"report_id" yaml:"report_id"`
	At       time.Time `json:"at" yaml:"at"`
	Editor   string    `json:"editor" yaml:"editor"`
	Action   string    `json:"action" yaml:"action"`
	Detail   string    `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// NameMapping resolves a free-text CSR name to an agent email.
type NameMapping struct {
	CSVName    string    `json:"csv_name" yaml:"csv_name"`
	AgentEmail string    `json:"agent_email" yaml:"agent_email"`
	UpdatedAt  time.Time `json:"updated_at" yaml:"updated_at"`
}

// Profile is an entry of the agent directory.
type Profile struct {
	Email    string `json:"email" yaml:"email"`
	FullName string `json:"full_name" yaml:"full_name"`
}

// ImportRow is a persisted row of a Matrix upload.
type ImportRow struct {
	ImportID    string      `json:"import_id" yaml:"import_id"`
	BatchID     string      `json:"batch_id" yaml:"batch_id"`
	Transaction Transaction `json:"transaction" yaml:"transaction"`
	ImportedAt  time.Time   `json:"imported_at" yaml:"imported_at"`
}

// ImportResult reports the outcome of a chunked import. Partial success is expected.
type ImportResult struct {
	BatchID  string   `json:"batch_id"`
	Total    int      `json:"total"`
	Inserted int      `json:"inserted"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors,omitempty"`
}
