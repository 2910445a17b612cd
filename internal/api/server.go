// Package api exposes the EOD services as a JSON HTTP surface.
package api

import (
	"net/http"
	"time"

	"fjacquet/eod-recon/internal/logging"
	"fjacquet/eod-recon/internal/metrics"
	"fjacquet/eod-recon/internal/service"

	"github.com/gorilla/mux"
)

// Options tunes the HTTP surface.
type Options struct {
	MaxUploadBytes int64
	RequestTimeout time.Duration
}

// Server holds the handlers and their dependencies.
type Server struct {
	svc     *service.Service
	metrics *metrics.Metrics
	opts    Options
	logger  logging.Logger
}

// NewServer creates a Server. m may be nil, in which case /metrics is not
// registered.
func NewServer(svc *service.Service, m *metrics.Metrics, opts Options, logger logging.Logger) *Server {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 20 << 20
	}
	return &Server{
		svc:     svc,
		metrics: m,
		opts:    opts,
		logger:  logging.Component(logger, "api"),
	}
}

// Router builds the route table.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	r.Use(s.metricsMiddleware, s.recoverMiddleware, s.requestIDMiddleware)
	if s.opts.RequestTimeout > 0 {
		r.Use(s.timeoutMiddleware)
	}

	r.HandleFunc("/healthz", s.health).Methods(http.MethodGet)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/reports", s.submitReport).Methods(http.MethodPost)
	api.HandleFunc("/reports", s.listReports).Methods(http.MethodGet)
	api.HandleFunc("/reports/{id}", s.getReport).Methods(http.MethodGet)
	api.HandleFunc("/reports/{id}", s.updateReport).Methods(http.MethodPut)
	api.HandleFunc("/reports/{id}/commissionable", s.commissionable).Methods(http.MethodGet)
	api.HandleFunc("/reports/{id}/edits", s.listEdits).Methods(http.MethodGet)
	api.HandleFunc("/reports/{id}/verify", s.verifyReport).Methods(http.MethodPost)
	api.HandleFunc("/reports/{id}/receipts", s.attachReceipt).Methods(http.MethodPost)

	api.HandleFunc("/matrix/import", s.importMatrix).Methods(http.MethodPost)
	api.HandleFunc("/matrix/reconcile", s.reconcileMatrix).Methods(http.MethodPost)

	api.HandleFunc("/name-mappings", s.saveNameMapping).Methods(http.MethodPut)
	api.HandleFunc("/name-mappings", s.listNameMappings).Methods(http.MethodGet)
	api.HandleFunc("/rollup", s.rollup).Methods(http.MethodGet)

	return r
}
