// Package parsererror defines the error taxonomy shared by the import, submission
// and reconciliation paths. Money and date coercion never produce errors; these
// types cover the failures that must reach a caller.
package parsererror

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by stores when a row does not exist.
var ErrNotFound = errors.New("not found")

// ParseError represents a row-level failure while reading an import.
type ParseError struct {
	Source string
	Line   int
	Field  string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s line %d: failed to parse %s='%s': %v",
			e.Source, e.Line, e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("%s: failed to parse %s='%s': %v",
		e.Source, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// InvalidFormatError represents an upload that does not match the bulk
// transaction import layout.
type InvalidFormatError struct {
	Source               string
	ExpectedFormat       string
	ActualContentSnippet string
	Msg                  string
}

func (e *InvalidFormatError) Error() string {
	if e.ActualContentSnippet != "" {
		return fmt.Sprintf("invalid format in '%s': %s. Expected: %s. Content snippet: '%s'",
			e.Source, e.Msg, e.ExpectedFormat, e.ActualContentSnippet)
	}
	return fmt.Sprintf("invalid format in '%s': %s. Expected: %s",
		e.Source, e.Msg, e.ExpectedFormat)
}

// ValidationError represents a request that is missing required data.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Reason)
}

// DuplicateReportError is the user-facing rejection for a second submission on
// an agent/office/date that already has a report.
type DuplicateReportError struct {
	AgentEmail       string
	Office           string
	ReportDate       string
	ExistingReportID string
}

func (e *DuplicateReportError) Error() string {
	return fmt.Sprintf("an EOD report already exists for %s at %s on %s (report %s); update it instead",
		e.AgentEmail, e.Office, e.ReportDate, e.ExistingReportID)
}

// StorageError wraps a failed read or write against a row store. Callers
// surface it as-is; nothing retries.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Storage wraps err in a StorageError unless it is nil or already one.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

// IsDuplicate reports whether err is a DuplicateReportError.
func IsDuplicate(err error) bool {
	var de *DuplicateReportError
	return errors.As(err, &de)
}

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
