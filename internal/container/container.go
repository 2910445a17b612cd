// Package container provides dependency injection for the eod-recon application.
// It centralizes the creation and wiring of all application dependencies,
// making them explicit and testable.
package container

import (
	"context"
	"fmt"
	"time"

	"fjacquet/eod-recon/internal/api"
	"fjacquet/eod-recon/internal/classifier"
	"fjacquet/eod-recon/internal/config"
	"fjacquet/eod-recon/internal/eod"
	"fjacquet/eod-recon/internal/logging"
	"fjacquet/eod-recon/internal/metrics"
	"fjacquet/eod-recon/internal/receipts"
	"fjacquet/eod-recon/internal/report"
	"fjacquet/eod-recon/internal/service"
	"fjacquet/eod-recon/internal/store"
)

// Container holds all application dependencies and provides methods to access them.
//
// Container is immutable after creation - all fields are private and can only
// be accessed through getter methods.
type Container struct {
	logger    logging.Logger
	config    *config.Config
	store     store.Store
	closer    func()
	metrics   *metrics.Metrics
	service   *service.Service
	generator *report.Generator
}

// NewContainer creates and wires all application dependencies.
// This is the main entry point for dependency injection in the application.
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	return NewContainerWithLogger(ctx, cfg, config.ConfigureLoggingFromConfig(cfg))
}

// NewContainerWithLogger is NewContainer with a caller-supplied logger.
func NewContainerWithLogger(ctx context.Context, cfg *config.Config, logger logging.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	st, closer, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	engine := eod.NewEngine(classifier.New(classifier.Options{
		TaxProducts: cfg.Fees.TaxProducts,
		Legacy:      cfg.Fees.LegacyMarkers,
	}, logger))

	var directory store.ProfileDirectory = st
	if cfg.Cache.ProfileTTLSeconds > 0 {
		directory = store.NewCachedDirectory(st, time.Duration(cfg.Cache.ProfileTTLSeconds)*time.Second)
	}

	opts := service.Options{
		Engine:    engine,
		Directory: directory,
		Metrics:   metrics.New(),
		ChunkSize: cfg.Import.ChunkSize,
	}

	if cfg.Receipts.Enabled {
		uploader, err := receipts.NewS3Uploader(ctx, receipts.Config{
			Bucket:    cfg.Receipts.Bucket,
			Endpoint:  cfg.Receipts.Endpoint,
			Region:    cfg.Receipts.Region,
			PublicURL: cfg.Receipts.PublicURL,
			AccessKey: cfg.Receipts.AccessKey,
			SecretKey: cfg.Receipts.SecretKey,
		}, logger)
		if err != nil {
			closer()
			return nil, fmt.Errorf("failed to create receipt uploader: %w", err)
		}
		opts.Receipts = uploader
		logger.Info("Receipt uploads enabled", logging.F("bucket", cfg.Receipts.Bucket))
	} else {
		logger.Info("Receipt uploads disabled")
	}

	delimiter := ','
	if r := []rune(cfg.CSV.Delimiter); len(r) == 1 {
		delimiter = r[0]
	}

	logger.Info("Container initialized successfully",
		logging.F("store_backend", cfg.Store.Backend),
		logging.F("profile_cache_ttl", cfg.Cache.ProfileTTLSeconds),
		logging.F("chunk_size", cfg.Import.ChunkSize))

	return &Container{
		logger:    logger,
		config:    cfg,
		store:     st,
		closer:    closer,
		metrics:   opts.Metrics,
		service:   service.New(st, opts, logger),
		generator: report.NewGenerator(delimiter, logger),
	}, nil
}

func openStore(ctx context.Context, cfg *config.Config, logger logging.Logger) (store.Store, func(), error) {
	switch cfg.Store.Backend {
	case config.BackendMemory:
		return store.NewMemoryStore(), func() {}, nil
	case config.BackendFile, "":
		return store.NewFileStore(cfg.Store.DataDir, logger), func() {}, nil
	case config.BackendPostgres:
		pg, err := store.NewPostgresStore(ctx, cfg.Store.DSN, cfg.Store.MaxConns, logger)
		if err != nil {
			return nil, nil, err
		}
		if err := pg.Migrate(ctx); err != nil {
			pg.Close()
			return nil, nil, err
		}
		return pg, pg.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend: %s", cfg.Store.Backend)
	}
}

// NewAPIServer builds the HTTP surface over the container's service.
func (c *Container) NewAPIServer() *api.Server {
	return api.NewServer(c.service, c.metrics, api.Options{
		MaxUploadBytes: int64(c.config.Server.MaxUploadSizeMB) << 20,
		RequestTimeout: time.Duration(c.config.Server.RequestTimeoutSecs) * time.Second,
	}, c.logger)
}

// GetService returns the EOD service.
func (c *Container) GetService() *service.Service {
	return c.service
}

// GetReportGenerator returns the output renderer.
func (c *Container) GetReportGenerator() *report.Generator {
	return c.generator
}

// GetMetrics returns the metrics registry shared by the service and API.
func (c *Container) GetMetrics() *metrics.Metrics {
	return c.metrics
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetStore returns the row store selected by configuration.
func (c *Container) GetStore() store.Store {
	return c.store
}

// Close releases the store connection pool, if any.
func (c *Container) Close() error {
	if c.closer != nil {
		c.closer()
	}
	c.logger.Info("Container closed")
	return nil
}
