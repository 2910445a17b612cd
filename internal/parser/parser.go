// Package parser defines the contract of transaction export readers.
package parser

import (
	"io"

	"fjacquet/eod-recon/internal/models"
)

// Parser reads an export into transactions.
type Parser interface {
	// Parse reads data from r. An input that is not a recognised layout
	// yields a parsererror.InvalidFormatError; unreadable rows are skipped.
	Parse(r io.Reader) ([]models.Transaction, error)

	// ParseFile is Parse over the file at path.
	ParseFile(path string) ([]models.Transaction, error)
}
