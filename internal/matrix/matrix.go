// Package matrix reads the Matrix bulk transaction export, either as a CSV
// file with a header row or as a headerless tab-separated paste.
package matrix

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"fjacquet/eod-recon/internal/common"
	"fjacquet/eod-recon/internal/currencyutils"
	"fjacquet/eod-recon/internal/dateutils"
	"fjacquet/eod-recon/internal/logging"
	"fjacquet/eod-recon/internal/models"
	"fjacquet/eod-recon/internal/parser"
	"fjacquet/eod-recon/internal/parsererror"
	"fjacquet/eod-recon/internal/textutils"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
)

// Columns is the column order of the export, shared by both layouts.
var Columns = []string{
	"Receipt", "ID", "Customer", "Customer Type", "Date / Time", "CSR", "Office", "Type",
	"Company", "Policy", "Financed", "Reference #", "Method", "Premium", "Fee", "Total",
}

// Row is one raw export line. Field order matches Columns.
type Row struct {
	Receipt      string `csv:"Receipt"`
	CustomerID   string `csv:"ID"`
	Customer     string `csv:"Customer"`
	CustomerType string `csv:"Customer Type"`
	DateTime     string `csv:"Date / Time"`
	CSR          string `csv:"CSR"`
	Office       string `csv:"Office"`
	Type         string `csv:"Type"`
	Company      string `csv:"Company"`
	Policy       string `csv:"Policy"`
	Financed     string `csv:"Financed"`
	Reference    string `csv:"Reference #"`
	Method       string `csv:"Method"`
	Premium      string `csv:"Premium"`
	Fee          string `csv:"Fee"`
	Total        string `csv:"Total"`
}

// Format is the detected layout of an upload.
type Format string

const (
	FormatCSV   Format = "csv"
	FormatPaste Format = "paste"
)

// Parser converts export data into transactions.
type Parser struct {
	logger logging.Logger
}

var _ parser.Parser = (*Parser)(nil)

// NewParser creates a Parser.
func NewParser(logger logging.Logger) *Parser {
	return &Parser{logger: logging.Component(logger, "matrix")}
}

// DetectFormat inspects the first non-blank line. A line whose cells include
// Receipt, CSR and Total is a header; otherwise tab-separated data is a paste.
func DetectFormat(data []byte) (Format, rune, error) {
	first := firstLine(data)
	if first == "" {
		return "", 0, &parsererror.InvalidFormatError{
			Source:         "matrix",
			ExpectedFormat: "CSV with header row or tab-separated paste",
			Msg:            "upload is empty",
		}
	}

	delim := ','
	if strings.Contains(first, "\t") {
		delim = '\t'
	}

	if isHeader(first, delim) {
		return FormatCSV, delim, nil
	}
	if delim == '\t' {
		return FormatPaste, delim, nil
	}
	return "", 0, &parsererror.InvalidFormatError{
		Source:               "matrix",
		ExpectedFormat:       strings.Join(Columns, ", "),
		ActualContentSnippet: snippet(first),
		Msg:                  "header row required for comma-separated uploads",
	}
}

var headerCells = []string{"receipt", "csr", "total"}

// isHeader reports whether line has every required column name as a whole cell.
func isHeader(line string, delim rune) bool {
	cells := make(map[string]bool)
	for _, cell := range strings.Split(line, string(delim)) {
		cells[strings.ToLower(strings.Trim(cell, "\" \t"))] = true
	}
	for _, name := range headerCells {
		if !cells[name] {
			return false
		}
	}
	return true
}

// Parse reads the whole upload and returns one transaction per usable row,
// each tagged with a fresh import id.
func (p *Parser) Parse(r io.Reader) ([]models.Transaction, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading upload: %w", err)
	}
	data = common.StripBOM(data)

	format, delim, err := DetectFormat(data)
	if err != nil {
		return nil, err
	}

	records, err := common.NewReader(bytes.NewReader(data), delim).ReadAll()
	if err != nil {
		return nil, &parsererror.InvalidFormatError{
			Source:         "matrix",
			ExpectedFormat: string(format),
			Msg:            err.Error(),
		}
	}

	var rows []Row
	switch format {
	case FormatCSV:
		rows, err = decodeWithHeader(records)
		if err != nil {
			return nil, err
		}
	default:
		rows = decodePositional(records)
	}

	p.logger.WithFields(
		logging.F("format", string(format)),
		logging.F(logging.FieldCount, len(rows)),
	).Debug("Decoded Matrix rows")

	txs := make([]models.Transaction, 0, len(rows))
	headerOffset := 1
	if format == FormatCSV {
		headerOffset = 2
	}
	for i, row := range rows {
		if row.isBlank() {
			continue
		}
		tx, perr := row.toTransaction(i + headerOffset)
		if perr != nil {
			p.logger.WithFields(
				logging.F(logging.FieldReceipt, tx.Receipt),
				logging.F(logging.FieldError, perr.Error()),
			).Warn("Unusable date, row excluded from date-filtered totals")
		}
		txs = append(txs, tx)
	}

	p.logger.Info("Parsed Matrix upload", logging.F(logging.FieldCount, len(txs)))
	return txs, nil
}

// ParseFile parses an export file from disk.
func (p *Parser) ParseFile(path string) ([]models.Transaction, error) {
	file, err := os.Open(path) // #nosec G304 -- path chosen by the operator
	if err != nil {
		return nil, fmt.Errorf("error opening Matrix file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			p.logger.WithError(err).Warn("Failed to close file")
		}
	}()
	return p.Parse(file)
}

// FilterRange keeps rows whose report date lies in [from, to]. Rows with an
// empty report date are always dropped.
func FilterRange(txs []models.Transaction, from, to string) []models.Transaction {
	out := make([]models.Transaction, 0, len(txs))
	for _, tx := range txs {
		if dateutils.InRange(tx.ReportDate, from, to) {
			out = append(out, tx)
		}
	}
	return out
}

func decodeWithHeader(records [][]string) ([]Row, error) {
	for i := range records[0] {
		records[0][i] = strings.TrimSpace(records[0][i])
	}
	var rows []Row
	if err := gocsv.UnmarshalCSV(&recordReader{records: records}, &rows); err != nil {
		return nil, &parsererror.InvalidFormatError{
			Source:               "matrix",
			ExpectedFormat:       strings.Join(Columns, ", "),
			ActualContentSnippet: snippet(strings.Join(records[0], ",")),
			Msg:                  err.Error(),
		}
	}
	return rows, nil
}

func decodePositional(records [][]string) []Row {
	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		cell := func(i int) string {
			if i < len(rec) {
				return rec[i]
			}
			return ""
		}
		rows = append(rows, Row{
			Receipt: cell(0), CustomerID: cell(1), Customer: cell(2), CustomerType: cell(3),
			DateTime: cell(4), CSR: cell(5), Office: cell(6), Type: cell(7),
			Company: cell(8), Policy: cell(9), Financed: cell(10), Reference: cell(11),
			Method: cell(12), Premium: cell(13), Fee: cell(14), Total: cell(15),
		})
	}
	return rows
}

func (r Row) isBlank() bool {
	return strings.TrimSpace(r.Receipt) == "" &&
		strings.TrimSpace(r.DateTime) == "" &&
		strings.TrimSpace(r.CSR) == ""
}

func (r Row) toTransaction(line int) (models.Transaction, *parsererror.ParseError) {
	tx := models.Transaction{
		Receipt:      strings.TrimSpace(r.Receipt),
		CustomerID:   strings.TrimSpace(r.CustomerID),
		CustomerName: strings.TrimSpace(r.Customer),
		CustomerType: strings.TrimSpace(r.CustomerType),
		OccurredAt:   strings.TrimSpace(r.DateTime),
		CSRName:      strings.TrimSpace(r.CSR),
		Office:       textutils.ExtractOfficeCode(r.Office),
		Type:         strings.TrimSpace(r.Type),
		Company:      strings.TrimSpace(r.Company),
		PolicyNumber: strings.TrimSpace(r.Policy),
		Financed:     strings.TrimSpace(r.Financed),
		Reference:    strings.TrimSpace(r.Reference),
		Method:       strings.TrimSpace(r.Method),
		Premium:      currencyutils.ParseMoney(r.Premium),
		Fee:          currencyutils.ParseMoney(r.Fee),
		Total:        currencyutils.ParseMoney(r.Total),
		ImportID:     uuid.NewString(),
	}

	occurred, err := dateutils.ParseOccurredAt(tx.OccurredAt)
	if err != nil {
		return tx, &parsererror.ParseError{Source: "matrix", Line: line, Field: "Date / Time", Value: tx.OccurredAt, Err: err}
	}
	tx.ReportDate = dateutils.ToISODate(occurred)
	return tx, nil
}

// recordReader feeds pre-read records to gocsv.
type recordReader struct {
	records [][]string
	pos     int
}

func (r *recordReader) Read() ([]string, error) {
	if r.pos >= len(r.records) {
		return nil, io.EOF
	}
	rec := r.records[r.pos]
	r.pos++
	return rec, nil
}

func (r *recordReader) ReadAll() ([][]string, error) {
	rest := r.records[r.pos:]
	r.pos = len(r.records)
	return rest, nil
}

func firstLine(data []byte) string {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			return scanner.Text()
		}
	}
	return ""
}

func snippet(s string) string {
	if len(s) > 80 {
		return s[:80]
	}
	return s
}
