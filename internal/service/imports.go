package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"fjacquet/eod-recon/internal/batch"
	"fjacquet/eod-recon/internal/logging"
	"fjacquet/eod-recon/internal/models"

	"github.com/google/uuid"
)

// ImportMatrix parses an uploaded Matrix export and stores its rows. See
// ImportTransactions for the write semantics.
func (s *Service) ImportMatrix(ctx context.Context, r io.Reader, source string) (models.ImportResult, []models.Transaction, error) {
	txs, err := s.parser.Parse(r)
	if err != nil {
		return models.ImportResult{}, nil, err
	}
	result := s.ImportTransactions(ctx, txs, source)
	return result, txs, nil
}

// LoadFiles parses and merges several Matrix exports without storing them.
// Unreadable files are logged and skipped; it fails only when none parse.
func (s *Service) LoadFiles(paths []string) ([]models.Transaction, error) {
	return s.aggregator.AggregateTransactions(paths, s.parser.ParseFile)
}

// ImportFiles merges several Matrix exports, then stores their rows.
func (s *Service) ImportFiles(ctx context.Context, paths []string) (models.ImportResult, []models.Transaction, error) {
	txs, err := s.LoadFiles(paths)
	if err != nil {
		return models.ImportResult{}, nil, err
	}
	return s.ImportTransactions(ctx, txs, fmt.Sprintf("%d files", len(paths))), txs, nil
}

// ImportTransactions writes rows in chunks under a fresh batch id. A failed
// chunk is counted and reported; earlier chunks stay written and later
// chunks are still attempted. Nothing is rolled back or retried.
func (s *Service) ImportTransactions(ctx context.Context, txs []models.Transaction, source string) models.ImportResult {
	batchID := uuid.NewString()
	importedAt := s.now()
	log := s.logger.WithFields(
		logging.F(logging.FieldBatchID, batchID),
		logging.F(logging.FieldInputFile, source),
	)

	rows := make([]models.ImportRow, 0, len(txs))
	for _, tx := range txs {
		if tx.ImportID == "" {
			tx.ImportID = uuid.NewString()
		}
		rows = append(rows, models.ImportRow{
			ImportID:    tx.ImportID,
			BatchID:     batchID,
			Transaction: tx,
			ImportedAt:  importedAt,
		})
	}

	result := models.ImportResult{BatchID: batchID, Total: len(rows)}
	start := time.Now()
	offset := 0
	for i, chunk := range batch.Chunks(rows, s.chunkSize) {
		first, last := offset+1, offset+len(chunk)
		offset += len(chunk)

		if err := ctx.Err(); err != nil {
			result.Failed += len(chunk)
			result.Errors = append(result.Errors, fmt.Sprintf("rows %d-%d: %v", first, last, err))
			continue
		}

		n, err := s.store.InsertImportRows(ctx, chunk)
		if err != nil {
			result.Failed += len(chunk)
			result.Errors = append(result.Errors, fmt.Sprintf("rows %d-%d: %v", first, last, err))
			log.Warn("Import chunk failed",
				logging.F("chunk", i),
				logging.F(logging.FieldCount, len(chunk)),
				logging.F(logging.FieldError, err))
			continue
		}
		result.Inserted += n
		result.Failed += len(chunk) - n
	}

	s.metrics.ImportFinished(result.Inserted, result.Failed)
	log.Info("Matrix import finished",
		logging.F("total", result.Total),
		logging.F("inserted", result.Inserted),
		logging.F("failed", result.Failed),
		logging.F(logging.FieldDuration, time.Since(start).Milliseconds()))
	return result
}
