package service

import (
	"fjacquet/eod-recon/internal/models"

	"github.com/shopspring/decimal"
)

// SubmitRequest is an agent's end-of-day form. ARCorrections lists receipt
// numbers only; their amounts are derived from Transactions.
type SubmitRequest struct {
	AgentEmail      string               `json:"agent_email"`
	AgentName       string               `json:"agent_name"`
	Office          string               `json:"office"`
	ReportDate      string               `json:"report_date"`
	Transactions    []models.Transaction `json:"transactions"`
	Expenses        decimal.Decimal      `json:"expenses"`
	Referrals       []models.Referral    `json:"referrals"`
	ARCorrections   []string             `json:"ar_corrections"`
	TotalCashInHand decimal.Decimal      `json:"total_cash_in_hand"`
	Editor          string               `json:"editor,omitempty"`
}

// VerifyRequest records a manager's cash and deposit checks.
type VerifyRequest struct {
	CashVerified    bool   `json:"cash_verified"`
	DepositVerified bool   `json:"deposit_verified"`
	VerifiedBy      string `json:"verified_by"`
}

// NameMappingRequest links a Matrix CSR name to an agent email.
type NameMappingRequest struct {
	CSVName    string `json:"csv_name"`
	AgentEmail string `json:"agent_email"`
}
