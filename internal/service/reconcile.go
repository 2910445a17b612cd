package service

import (
	"context"
	"io"

	"fjacquet/eod-recon/internal/batch"
	"fjacquet/eod-recon/internal/metrics"
	"fjacquet/eod-recon/internal/models"
	"fjacquet/eod-recon/internal/parsererror"
	"fjacquet/eod-recon/internal/reconcile"
	"fjacquet/eod-recon/internal/validation"
)

// Reconcile compares Matrix rows with the stored reports of the same days.
// Open bounds default to the span of the rows' report dates. Any storage
// failure aborts the run.
func (s *Service) Reconcile(ctx context.Context, txs []models.Transaction, from, to string) (reconcile.Result, error) {
	if err := validation.DateRange(from, to); err != nil {
		return reconcile.Result{}, err
	}
	span := batch.RangeOf(txs)
	if from == "" {
		from = span.From
	}
	if to == "" {
		to = span.To
	}

	reports, err := s.store.ListReports(ctx, models.ReportFilter{From: from, To: to})
	if err != nil {
		return reconcile.Result{}, parsererror.Storage("list reports", err)
	}
	profiles, err := s.directory.ListProfiles(ctx)
	if err != nil {
		return reconcile.Result{}, parsererror.Storage("list profiles", err)
	}
	mappings, err := s.store.LoadNameMappings(ctx)
	if err != nil {
		return reconcile.Result{}, parsererror.Storage("load name mappings", err)
	}

	result := s.reconciler.Reconcile(reconcile.Input{
		Transactions: txs,
		From:         from,
		To:           to,
		Reports:      reports,
		Profiles:     profiles,
		Mappings:     mappings,
	})

	for _, g := range result.Groups {
		switch {
		case g.IsMissingEOD:
			s.metrics.ReconcileGroup(metrics.OutcomeMissing)
		case len(g.MissingReceipts) > 0:
			s.metrics.ReconcileGroup(metrics.OutcomeDiscrepancy)
		default:
			s.metrics.ReconcileGroup(metrics.OutcomeMatched)
		}
	}
	return result, nil
}

// ReconcileMatrix parses an uploaded export and reconciles it.
func (s *Service) ReconcileMatrix(ctx context.Context, r io.Reader, from, to string) (reconcile.Result, error) {
	txs, err := s.parser.Parse(r)
	if err != nil {
		return reconcile.Result{}, err
	}
	return s.Reconcile(ctx, txs, from, to)
}

// ReconcileFiles merges several exports from disk and reconciles them.
func (s *Service) ReconcileFiles(ctx context.Context, paths []string, from, to string) (reconcile.Result, error) {
	txs, err := s.LoadFiles(paths)
	if err != nil {
		return reconcile.Result{}, err
	}
	return s.Reconcile(ctx, txs, from, to)
}
