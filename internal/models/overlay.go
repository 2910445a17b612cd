package models

import "github.com/shopspring/decimal"

// OverlayKey groups Matrix rows per day, office and CSR.
type OverlayKey struct {
	ReportDate    string `json:"report_date"`
	Office        string `json:"office"`
	NormalizedCSR string `json:"normalized_csr"`
}

// MissingReceipt describes an imported row absent from the matched report.
type MissingReceipt struct {
	Receipt      string          `json:"receipt"`
	PolicyNumber string          `json:"policy_number"`
	CustomerName string          `json:"customer_name"`
	Premium      decimal.Decimal `json:"premium"`
	Fee          decimal.Decimal `json:"fee"`
	Total        decimal.Decimal `json:"total"`
	ImportID     string          `json:"import_id,omitempty"`
}

// MatrixOverlayGroup is the reconciler's view of one CSR's imported day.
// Scores are always filled so a reviewer can confirm or override the match.
type MatrixOverlayGroup struct {
	Key                 OverlayKey       `json:"key"`
	CSRName             string           `json:"csr_name"`
	Transactions        []Transaction    `json:"transactions"`
	Summary             Summary          `json:"summary"`
	IsMissingEOD        bool             `json:"is_missing_eod"`
	IsUnmappedName      bool             `json:"is_unmapped_name"`
	ResolvedEmail       string           `json:"resolved_email,omitempty"`
	MatchedReportID     string           `json:"matched_report_id,omitempty"`
	MatchMethod         string           `json:"match_method"`
	MatchScore          int              `json:"match_score"`
	CollisionReportID   string           `json:"collision_report_id,omitempty"`
	CollisionReportName string           `json:"collision_report_name,omitempty"`
	CollisionScore      int              `json:"collision_score,omitempty"`
	MissingReceipts     []MissingReceipt `json:"missing_receipts,omitempty"`
}

// NeedsReview reports whether the group is missing or has discrepancies.
func (g MatrixOverlayGroup) NeedsReview() bool {
	return g.IsMissingEOD || len(g.MissingReceipts) > 0
}
