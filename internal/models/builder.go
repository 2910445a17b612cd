package models

import (
	"fjacquet/eod-recon/internal/currencyutils"
	"fjacquet/eod-recon/internal/dateutils"
	"fjacquet/eod-recon/internal/textutils"

	"github.com/google/uuid"
)

// TransactionBuilder provides a fluent API for constructing transactions
type TransactionBuilder struct {
	tx Transaction
}

// NewTransactionBuilder creates a new TransactionBuilder with zero amounts
func NewTransactionBuilder() *TransactionBuilder {
	return &TransactionBuilder{}
}

// WithReceipt sets the receipt number
func (b *TransactionBuilder) WithReceipt(receipt string) *TransactionBuilder {
	b.tx.Receipt = receipt
	return b
}

// WithCustomer sets the customer id and name
func (b *TransactionBuilder) WithCustomer(id, name string) *TransactionBuilder {
	b.tx.CustomerID = id
	b.tx.CustomerName = name
	return b
}

// WithOccurredAt stores the raw timestamp and derives the report date from it.
func (b *TransactionBuilder) WithOccurredAt(raw string) *TransactionBuilder {
	b.tx.OccurredAt = raw
	b.tx.ReportDate = dateutils.ReportDate(raw)
	return b
}

// WithCSR sets the CSR name as written in the export
func (b *TransactionBuilder) WithCSR(name string) *TransactionBuilder {
	b.tx.CSRName = name
	return b
}

// WithOffice sets the office, normalized to its canonical code
func (b *TransactionBuilder) WithOffice(office string) *TransactionBuilder {
	b.tx.Office = textutils.ExtractOfficeCode(office)
	return b
}

// WithType sets the policy type (NEW, RWR, END, ...)
func (b *TransactionBuilder) WithType(typ string) *TransactionBuilder {
	b.tx.Type = typ
	return b
}

// WithCompany sets the company / fee label
func (b *TransactionBuilder) WithCompany(company string) *TransactionBuilder {
	b.tx.Company = company
	return b
}

// WithPolicy sets the policy number
func (b *TransactionBuilder) WithPolicy(policy string) *TransactionBuilder {
	b.tx.PolicyNumber = policy
	return b
}

// WithMethod sets the payment method
func (b *TransactionBuilder) WithMethod(method string) *TransactionBuilder {
	b.tx.Method = method
	return b
}

// WithAmounts parses premium, fee and total cells with the money parser.
func (b *TransactionBuilder) WithAmounts(premium, fee, total string) *TransactionBuilder {
	b.tx.Premium = currencyutils.ParseMoney(premium)
	b.tx.Fee = currencyutils.ParseMoney(fee)
	b.tx.Total = currencyutils.ParseMoney(total)
	return b
}

// WithImportID tags the row with a fresh import identifier
func (b *TransactionBuilder) WithImportID() *TransactionBuilder {
	b.tx.ImportID = uuid.NewString()
	return b
}

// Build returns the constructed transaction
func (b *TransactionBuilder) Build() Transaction {
	return b.tx
}
