// Package metrics exposes Prometheus instruments for the EOD services and the HTTP API.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "eod"

// Reconciliation outcomes recorded per overlay group.
const (
	OutcomeMatched     = "matched"
	OutcomeMissing     = "missing_eod"
	OutcomeDiscrepancy = "discrepancy"
)

// Metrics holds every instrument on a private registry. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	ReportsSubmitted     prometheus.Counter
	DuplicateSubmissions prometheus.Counter
	ReportsUpdated       prometheus.Counter
	ImportRows           *prometheus.CounterVec
	ReconcileGroups      *prometheus.CounterVec
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
}

// New registers the instruments plus the Go and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		ReportsSubmitted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_submitted_total",
			Help:      "EOD reports accepted.",
		}),
		DuplicateSubmissions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicate_submissions_total",
			Help:      "Submissions rejected because a report already exists for the agent, office and day.",
		}),
		ReportsUpdated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_updated_total",
			Help:      "EOD report edits, including verification.",
		}),
		ImportRows: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matrix_import_rows_total",
			Help:      "Matrix rows processed by bulk imports.",
		}, []string{"status"}),
		ReconcileGroups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconcile_groups_total",
			Help:      "Overlay groups produced by reconciliation runs.",
		}, []string{"outcome"}),
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ReportSubmitted counts an accepted report.
func (m *Metrics) ReportSubmitted() {
	if m != nil {
		m.ReportsSubmitted.Inc()
	}
}

// DuplicateRejected counts a rejected duplicate submission.
func (m *Metrics) DuplicateRejected() {
	if m != nil {
		m.DuplicateSubmissions.Inc()
	}
}

// ReportUpdated counts an edit.
func (m *Metrics) ReportUpdated() {
	if m != nil {
		m.ReportsUpdated.Inc()
	}
}

// ImportFinished records the row outcome of one import.
func (m *Metrics) ImportFinished(inserted, failed int) {
	if m == nil {
		return
	}
	m.ImportRows.WithLabelValues("inserted").Add(float64(inserted))
	m.ImportRows.WithLabelValues("failed").Add(float64(failed))
}

// ReconcileGroup counts one overlay group under outcome.
func (m *Metrics) ReconcileGroup(outcome string) {
	if m != nil {
		m.ReconcileGroups.WithLabelValues(outcome).Inc()
	}
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(seconds)
}
