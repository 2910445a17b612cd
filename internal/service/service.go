// Package service orchestrates the EOD pipeline against the row stores:
// report submission and edits, Matrix imports, reconciliation runs, name
// mappings and regional rollups.
package service

import (
	"context"
	"io"
	"time"

	"fjacquet/eod-recon/internal/batch"
	"fjacquet/eod-recon/internal/eod"
	"fjacquet/eod-recon/internal/logging"
	"fjacquet/eod-recon/internal/matrix"
	"fjacquet/eod-recon/internal/metrics"
	"fjacquet/eod-recon/internal/parser"
	"fjacquet/eod-recon/internal/reconcile"
	"fjacquet/eod-recon/internal/store"
)

// DefaultChunkSize is used when Options.ChunkSize is not positive.
const DefaultChunkSize = 500

// ReceiptStorage uploads a receipt file and returns its URL.
type ReceiptStorage interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}

// Options carries the optional collaborators of a Service.
type Options struct {
	Engine    *eod.Engine
	Directory store.ProfileDirectory // defaults to the store itself
	Receipts  ReceiptStorage         // nil disables receipt uploads
	Parser    parser.Parser          // defaults to the Matrix parser
	Metrics   *metrics.Metrics
	ChunkSize int
	Clock     func() time.Time
}

// Service is safe for concurrent use when its store is.
type Service struct {
	store      store.Store
	directory  store.ProfileDirectory
	engine     *eod.Engine
	reconciler *reconcile.Reconciler
	parser     parser.Parser
	aggregator *batch.BatchAggregator
	receipts   ReceiptStorage
	metrics    *metrics.Metrics
	chunkSize  int
	now        func() time.Time
	logger     logging.Logger
}

// New wires a Service over st.
func New(st store.Store, opts Options, logger logging.Logger) *Service {
	engine := opts.Engine
	if engine == nil {
		engine = eod.NewEngine(nil)
	}
	directory := opts.Directory
	if directory == nil {
		directory = st
	}
	chunkSize := opts.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	p := opts.Parser
	if p == nil {
		p = matrix.NewParser(logger)
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	return &Service{
		store:      st,
		directory:  directory,
		engine:     engine,
		reconciler: reconcile.New(engine, logger),
		parser:     p,
		aggregator: batch.NewBatchAggregator(logger),
		receipts:   opts.Receipts,
		metrics:    opts.Metrics,
		chunkSize:  chunkSize,
		now:        func() time.Time { return clock().UTC() },
		logger:     logging.Component(logger, "service"),
	}
}

// Engine returns the aggregation engine in use.
func (s *Service) Engine() *eod.Engine {
	return s.engine
}

// Parser returns the export parser in use.
func (s *Service) Parser() parser.Parser {
	return s.parser
}
