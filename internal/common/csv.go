// Package common provides shared CSV reading and writing helpers.
package common

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"fjacquet/eod-recon/internal/logging"
	"fjacquet/eod-recon/internal/models"

	"github.com/gocarina/gocsv"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// StripBOM removes a leading UTF-8 byte order mark.
func StripBOM(data []byte) []byte {
	return bytes.TrimPrefix(data, utf8BOM)
}

// NewReader returns a lenient csv.Reader with the given delimiter.
// Rows may have a varying number of fields.
func NewReader(r io.Reader, delim rune) *csv.Reader {
	reader := csv.NewReader(r)
	reader.Comma = delim
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	return reader
}

// ReadCSV decodes delimited data with a header row into a slice of structs using gocsv.
// TCSVRow is the struct type that maps to the CSV columns
func ReadCSV[TCSVRow any](r io.Reader, delim rune, logger logging.Logger) ([]TCSVRow, error) {
	var rows []TCSVRow
	if err := gocsv.UnmarshalCSV(NewReader(r, delim), &rows); err != nil {
		logger.WithError(err).Error("Failed to parse CSV data")
		return nil, fmt.Errorf("error parsing CSV data: %w", err)
	}

	logger.Debug("Successfully read CSV data", logging.F(logging.FieldCount, len(rows)))
	return rows, nil
}

// WriteCSV encodes rows with a header line.
func WriteCSV[TCSVRow any](w io.Writer, rows []TCSVRow, delim rune) error {
	csvWriter := csv.NewWriter(w)
	csvWriter.Comma = delim

	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(csvWriter)); err != nil {
		return fmt.Errorf("error writing CSV data: %w", err)
	}
	csvWriter.Flush()
	return csvWriter.Error()
}

// WriteCSVFile writes rows to a file, creating its directory if needed.
func WriteCSVFile[TCSVRow any](path string, rows []TCSVRow, delim rune, logger logging.Logger) error {
	if err := os.MkdirAll(filepath.Dir(path), models.PermissionDirectory); err != nil {
		logger.WithError(err).Error("Failed to create directory")
		return fmt.Errorf("error creating directory: %w", err)
	}

	file, err := os.Create(path) // #nosec G304 -- path chosen by the operator
	if err != nil {
		logger.WithError(err).Error("Failed to create CSV file")
		return fmt.Errorf("error creating CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close file")
		}
	}()

	if err := WriteCSV(file, rows, delim); err != nil {
		logger.WithError(err).Error("Failed to marshal rows to CSV")
		return err
	}

	logger.WithFields(
		logging.F("file", path),
		logging.F(logging.FieldCount, len(rows)),
	).Info("Successfully wrote CSV file")
	return nil
}
