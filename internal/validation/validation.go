// Package validation checks user input before it reaches the services.
package validation

import (
	"fmt"
	"net/mail"
	"os"
	"strings"

	"fjacquet/eod-recon/internal/dateutils"
	"fjacquet/eod-recon/internal/parsererror"

	"github.com/shopspring/decimal"
)

// Output formats accepted by the export commands and endpoints.
const (
	FormatJSON  = "json"
	FormatCSV   = "csv"
	FormatTable = "table"
)

// IsReadableFile checks that path exists and is a regular file.
func IsReadableFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("file does not exist: %s", path)
	}
	if err != nil {
		return fmt.Errorf("error checking path %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("path %s is not a regular file", path)
	}
	return nil
}

// IsValidOutputFormat checks if the given format is supported.
func IsValidOutputFormat(format string) error {
	switch format {
	case FormatJSON, FormatCSV, FormatTable:
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s. Supported formats are 'json', 'csv', 'table'", format)
	}
}

// AgentEmail requires a syntactically valid address.
func AgentEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return &parsererror.ValidationError{Field: "agent_email", Reason: "is required"}
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return &parsererror.ValidationError{Field: "agent_email", Reason: fmt.Sprintf("%q is not an email address", email)}
	}
	return nil
}

// Office requires a non-blank office.
func Office(office string) error {
	if strings.TrimSpace(office) == "" {
		return &parsererror.ValidationError{Field: "office", Reason: "is required"}
	}
	return nil
}

// ReportDate requires a YYYY-MM-DD date.
func ReportDate(date string) error {
	if !dateutils.IsValidReportDate(date) {
		return &parsererror.ValidationError{Field: "report_date", Reason: fmt.Sprintf("%q is not a YYYY-MM-DD date", date)}
	}
	return nil
}

// DateRange accepts open bounds but rejects malformed or inverted ones.
func DateRange(from, to string) error {
	if from != "" {
		if err := ReportDate(from); err != nil {
			return &parsererror.ValidationError{Field: "from", Reason: err.(*parsererror.ValidationError).Reason}
		}
	}
	if to != "" {
		if err := ReportDate(to); err != nil {
			return &parsererror.ValidationError{Field: "to", Reason: err.(*parsererror.ValidationError).Reason}
		}
	}
	if from != "" && to != "" && from > to {
		return &parsererror.ValidationError{Field: "to", Reason: fmt.Sprintf("%s is before %s", to, from)}
	}
	return nil
}

// NonNegative rejects amounts below zero.
func NonNegative(field string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return &parsererror.ValidationError{Field: field, Reason: "must not be negative"}
	}
	return nil
}

// IsValidFilePermissions checks that others have no access to a sensitive file.
func IsValidFilePermissions(mode os.FileMode) error {
	if mode&0007 != 0 {
		return fmt.Errorf("file permissions are too permissive: %s. Recommended 0600 or 0640", mode.String())
	}
	return nil
}
