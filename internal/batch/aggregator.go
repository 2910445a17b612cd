// Package batch merges several Matrix exports into one row set and splits
// large row sets into write chunks.
package batch

import (
	"path/filepath"
	"sort"
	"strings"
	"time"

	"fjacquet/eod-recon/internal/dateutils"
	"fjacquet/eod-recon/internal/logging"
	"fjacquet/eod-recon/internal/models"
)

// DateRange is an inclusive range of YYYY-MM-DD report dates.
type DateRange struct {
	From string
	To   string
}

// String returns the range as "FROM_TO", or "" when either bound is missing.
func (dr DateRange) String() string {
	if dr.From == "" || dr.To == "" {
		return ""
	}
	return dr.From + "_" + dr.To
}

// Merge combines this range with another, returning the overall range.
func (dr DateRange) Merge(other DateRange) DateRange {
	out := dr
	if out.From == "" || (other.From != "" && other.From < out.From) {
		out.From = other.From
	}
	if out.To == "" || (other.To != "" && other.To > out.To) {
		out.To = other.To
	}
	return out
}

// RangeOf returns the span of the transactions' report dates. Rows with an
// unusable date are ignored.
func RangeOf(transactions []models.Transaction) DateRange {
	var dr DateRange
	for _, tx := range transactions {
		if tx.ReportDate == "" {
			continue
		}
		dr = dr.Merge(DateRange{From: tx.ReportDate, To: tx.ReportDate})
	}
	return dr
}

// Chunks splits items into consecutive slices of at most size elements.
// A non-positive size yields a single chunk.
func Chunks[T any](items []T, size int) [][]T {
	if len(items) == 0 {
		return nil
	}
	if size <= 0 || size >= len(items) {
		return [][]T{items}
	}
	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[start:end])
	}
	return chunks
}

// BatchAggregator merges transactions parsed from several files.
type BatchAggregator struct {
	logger logging.Logger
}

// NewBatchAggregator creates a new BatchAggregator instance
func NewBatchAggregator(logger logging.Logger) *BatchAggregator {
	return &BatchAggregator{
		logger: logging.Component(logger, "batch"),
	}
}

// AggregateTransactions parses every file with parseFunc and returns the
// combined rows in chronological order. Rows repeated by overlapping exports
// are kept once. A file that fails to parse is logged and skipped; the error
// of the last failure is returned only when no file could be read at all.
func (ba *BatchAggregator) AggregateTransactions(files []string, parseFunc func(string) ([]models.Transaction, error)) ([]models.Transaction, error) {
	var (
		perFile     [][]models.Transaction
		sourceFiles []string
		lastErr     error
	)

	for _, file := range files {
		ba.logger.Debug("Processing file", logging.F(logging.FieldInputFile, filepath.Base(file)))

		transactions, err := parseFunc(file)
		if err != nil {
			ba.logger.Error("Failed to parse file",
				logging.F(logging.FieldInputFile, file),
				logging.F(logging.FieldError, err))
			lastErr = err
			continue
		}

		perFile = append(perFile, transactions)
		sourceFiles = append(sourceFiles, filepath.Base(file))
	}

	if len(sourceFiles) == 0 && lastErr != nil {
		return nil, lastErr
	}

	allTransactions, _ := ba.dropOverlappingRows(perFile)
	ba.sortTransactionsChronologically(allTransactions)

	ba.logger.Info("Aggregated Matrix exports",
		logging.F(logging.FieldCount, len(allTransactions)),
		logging.F("source_files", strings.Join(sourceFiles, ", ")))

	return allTransactions, nil
}

// sortTransactionsChronologically orders rows by occurrence, falling back to
// report date and receipt for rows whose timestamp does not parse.
func (ba *BatchAggregator) sortTransactionsChronologically(transactions []models.Transaction) {
	at := make(map[string]time.Time, len(transactions))
	for _, tx := range transactions {
		if _, ok := at[tx.OccurredAt]; ok {
			continue
		}
		if t, err := dateutils.ParseOccurredAt(tx.OccurredAt); err == nil {
			at[tx.OccurredAt] = t
		}
	}

	sort.SliceStable(transactions, func(i, j int) bool {
		a, b := transactions[i], transactions[j]
		if a.ReportDate != b.ReportDate {
			return a.ReportDate < b.ReportDate
		}
		ta, okA := at[a.OccurredAt]
		tb, okB := at[b.OccurredAt]
		if okA && okB && !ta.Equal(tb) {
			return ta.Before(tb)
		}
		return a.Receipt < b.Receipt
	})
}

// dropOverlappingRows merges the per-file rows, keeping each duplicateKey as
// many times as the file that repeats it most. A row that appears twice in
// one export stays twice; the same row in two exports is kept once.
func (ba *BatchAggregator) dropOverlappingRows(perFile [][]models.Transaction) ([]models.Transaction, int) {
	kept := make(map[string]int)
	var (
		out     []models.Transaction
		dropped int
	)

	for _, transactions := range perFile {
		inFile := make(map[string]int, len(transactions))
		for _, tx := range transactions {
			key := duplicateKey(tx)
			inFile[key]++
			if inFile[key] <= kept[key] {
				dropped++
				ba.logger.Debug("Dropped row repeated by overlapping export",
					logging.F(logging.FieldReceipt, tx.Receipt),
					logging.F(logging.FieldDate, tx.ReportDate),
					logging.F("total", tx.Total.String()))
				continue
			}
			kept[key]++
			out = append(out, tx)
		}
	}

	if dropped > 0 {
		ba.logger.Warn("Dropped duplicate transactions from overlapping exports", logging.F(logging.FieldCount, dropped))
	}
	return out, dropped
}

func duplicateKey(tx models.Transaction) string {
	return strings.Join([]string{
		tx.Receipt, tx.OccurredAt, tx.Office, tx.PolicyNumber, tx.Company, tx.Total.String(),
	}, "\x1f")
}
