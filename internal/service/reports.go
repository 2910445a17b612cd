package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"fjacquet/eod-recon/internal/currencyutils"
	"fjacquet/eod-recon/internal/dateutils"
	"fjacquet/eod-recon/internal/eod"
	"fjacquet/eod-recon/internal/logging"
	"fjacquet/eod-recon/internal/models"
	"fjacquet/eod-recon/internal/parsererror"
	"fjacquet/eod-recon/internal/receipts"
	"fjacquet/eod-recon/internal/textutils"
	"fjacquet/eod-recon/internal/validation"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SubmitReport creates the report for an agent, office and day. A second
// submission for the same key is rejected with a DuplicateReportError before
// anything is written. The check and the insert are not atomic: two
// concurrent first submissions can both pass the check.
func (s *Service) SubmitReport(ctx context.Context, req SubmitRequest) (*models.Report, error) {
	if err := validateSubmission(req); err != nil {
		return nil, err
	}

	report := &models.Report{
		ID:         uuid.NewString(),
		AgentEmail: strings.ToLower(strings.TrimSpace(req.AgentEmail)),
		AgentName:  strings.TrimSpace(req.AgentName),
		Office:     textutils.ExtractOfficeCode(req.Office),
		ReportDate: req.ReportDate,
	}
	log := s.logger.WithFields(
		logging.F(logging.FieldAgent, report.AgentEmail),
		logging.F(logging.FieldOffice, report.Office),
		logging.F(logging.FieldDate, report.ReportDate),
	)

	if err := s.rejectDuplicate(ctx, report.Key(), ""); err != nil {
		if parsererror.IsDuplicate(err) {
			log.Warn("Rejected duplicate EOD submission")
		}
		return nil, err
	}

	now := s.now()
	report.CreatedAt = now
	report.UpdatedAt = now
	s.compute(report, req)

	if err := s.store.InsertReport(ctx, report); err != nil {
		return nil, parsererror.Storage("insert report", err)
	}
	if err := s.appendEdit(ctx, report.ID, editorOf(req.Editor, report.AgentEmail), models.ActionCreated, ""); err != nil {
		return nil, err
	}

	s.metrics.ReportSubmitted()
	log.WithFields(
		logging.F(logging.FieldReportID, report.ID),
		logging.F(logging.FieldCount, len(report.RawTransactions)),
		logging.F("trust_deposit", report.Summary.TrustDeposit.StringFixed(2)),
	).Info("EOD report submitted")
	return report, nil
}

// Preview computes the derived fields of a submission without storing it.
// The returned report has no id and its commissionable view is returned
// alongside.
func (s *Service) Preview(req SubmitRequest) (*models.Report, models.Summary) {
	report := &models.Report{
		AgentEmail: strings.ToLower(strings.TrimSpace(req.AgentEmail)),
		AgentName:  strings.TrimSpace(req.AgentName),
		Office:     textutils.ExtractOfficeCode(req.Office),
		ReportDate: req.ReportDate,
	}
	s.compute(report, req)
	washed, _ := eod.Wash(report.RawTransactions)
	return report, s.engine.Commissionable(report.Summary, washed, report.ARCorrections)
}

// UpdateReport replaces the inputs of an existing report and recomputes
// every derived field. Moving the report onto a key that another report
// already holds is rejected.
func (s *Service) UpdateReport(ctx context.Context, id string, req SubmitRequest) (*models.Report, error) {
	if err := validateSubmission(req); err != nil {
		return nil, err
	}

	report, err := s.GetReport(ctx, id)
	if err != nil {
		return nil, err
	}
	before := report.Summary

	report.AgentEmail = strings.ToLower(strings.TrimSpace(req.AgentEmail))
	if name := strings.TrimSpace(req.AgentName); name != "" {
		report.AgentName = name
	}
	report.Office = textutils.ExtractOfficeCode(req.Office)
	report.ReportDate = req.ReportDate

	if err := s.rejectDuplicate(ctx, report.Key(), report.ID); err != nil {
		return nil, err
	}

	s.compute(report, req)
	report.UpdatedAt = s.now()

	if err := s.store.UpdateReport(ctx, report); err != nil {
		return nil, parsererror.Storage("update report", err)
	}
	detail := describeChange(before, report.Summary)
	if err := s.appendEdit(ctx, report.ID, editorOf(req.Editor, report.AgentEmail), models.ActionUpdated, detail); err != nil {
		return nil, err
	}

	s.metrics.ReportUpdated()
	s.logger.Info("EOD report updated",
		logging.F(logging.FieldReportID, report.ID),
		logging.F("detail", detail))
	return report, nil
}

// VerifyReport records the manager's cash and deposit checks.
func (s *Service) VerifyReport(ctx context.Context, id string, req VerifyRequest) (*models.Report, error) {
	if strings.TrimSpace(req.VerifiedBy) == "" {
		return nil, &parsererror.ValidationError{Field: "verified_by", Reason: "is required"}
	}

	report, err := s.GetReport(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	report.CashVerified = req.CashVerified
	report.DepositVerified = req.DepositVerified
	report.VerifiedBy = strings.TrimSpace(req.VerifiedBy)
	report.VerifiedAt = &now
	report.UpdatedAt = now

	if err := s.store.UpdateReport(ctx, report); err != nil {
		return nil, parsererror.Storage("verify report", err)
	}
	detail := fmt.Sprintf("cash_verified=%t deposit_verified=%t", req.CashVerified, req.DepositVerified)
	if err := s.appendEdit(ctx, report.ID, report.VerifiedBy, models.ActionVerified, detail); err != nil {
		return nil, err
	}

	s.metrics.ReportUpdated()
	return report, nil
}

// AttachReceipt uploads a receipt image and links it to the report.
func (s *Service) AttachReceipt(ctx context.Context, id, filename, contentType string, body io.Reader, editor string) (*models.Report, error) {
	if s.receipts == nil {
		return nil, &parsererror.ValidationError{Field: "receipts", Reason: "receipt storage is not configured"}
	}

	report, err := s.GetReport(ctx, id)
	if err != nil {
		return nil, err
	}

	url, err := s.receipts.Upload(ctx, receipts.ObjectKey(report.ID, filename), contentType, body)
	if err != nil {
		return nil, err
	}

	report.ReceiptURLs = append(report.ReceiptURLs, url)
	report.UpdatedAt = s.now()
	if err := s.store.UpdateReport(ctx, report); err != nil {
		return nil, parsererror.Storage("attach receipt", err)
	}
	if err := s.appendEdit(ctx, report.ID, editorOf(editor, report.AgentEmail), models.ActionReceiptAttached, url); err != nil {
		return nil, err
	}
	return report, nil
}

// GetReport loads one report. A missing report yields an error wrapping
// parsererror.ErrNotFound.
func (s *Service) GetReport(ctx context.Context, id string) (*models.Report, error) {
	report, err := s.store.GetReport(ctx, id)
	if err != nil {
		if parsererror.IsNotFound(err) {
			return nil, err
		}
		return nil, parsererror.Storage("get report", err)
	}
	return report, nil
}

// ListReports returns the reports matching filter.
func (s *Service) ListReports(ctx context.Context, filter models.ReportFilter) ([]models.Report, error) {
	if err := validation.DateRange(filter.From, filter.To); err != nil {
		return nil, err
	}
	if filter.Office != "" {
		filter.Office = textutils.ExtractOfficeCode(filter.Office)
	}
	reports, err := s.store.ListReports(ctx, filter)
	if err != nil {
		return nil, parsererror.Storage("list reports", err)
	}
	return reports, nil
}

// ListEdits returns the audit trail of a report, oldest first.
func (s *Service) ListEdits(ctx context.Context, id string) ([]models.EditEvent, error) {
	events, err := s.store.ListEdits(ctx, id)
	if err != nil {
		return nil, parsererror.Storage("list edits", err)
	}
	return events, nil
}

// Commissionable returns the A/R adjusted summary of a stored report. It is
// computed on demand and never stored.
func (s *Service) Commissionable(ctx context.Context, id string) (models.Summary, error) {
	report, err := s.GetReport(ctx, id)
	if err != nil {
		return models.Summary{}, err
	}
	washed, _ := eod.Wash(report.RawTransactions)
	return s.engine.Commissionable(report.Summary, washed, report.ARCorrections), nil
}

// rejectDuplicate returns a DuplicateReportError when key is held by a
// report other than selfID.
func (s *Service) rejectDuplicate(ctx context.Context, key models.ReportKey, selfID string) error {
	existing, err := s.store.FindReport(ctx, key)
	switch {
	case err == nil:
		if existing.ID == selfID {
			return nil
		}
		s.metrics.DuplicateRejected()
		return &parsererror.DuplicateReportError{
			AgentEmail:       key.AgentEmail,
			Office:           key.Office,
			ReportDate:       key.ReportDate,
			ExistingReportID: existing.ID,
		}
	case parsererror.IsNotFound(err):
		return nil
	default:
		return parsererror.Storage("find report", err)
	}
}

// compute fills every derived field of report from req.
func (s *Service) compute(report *models.Report, req SubmitRequest) {
	raw := normalizeTransactions(req.Transactions, report.Office, report.ReportDate)
	summary, washed := s.engine.Summarize(raw, req.Expenses, req.Referrals)

	corrections := make([]models.Correction, 0, len(req.ARCorrections))
	for _, receipt := range req.ARCorrections {
		corrections = append(corrections, models.Correction{ReceiptNumber: strings.TrimSpace(receipt)})
	}

	report.RawTransactions = raw
	report.Summary = summary
	report.Expenses = req.Expenses
	report.Referrals = append([]models.Referral(nil), req.Referrals...)
	report.ARCorrections = s.engine.PopulateCorrections(washed, corrections)
	report.TotalCashInHand = req.TotalCashInHand
	report.CashDifference = eod.CashDifference(summary, req.TotalCashInHand)
}

func (s *Service) appendEdit(ctx context.Context, reportID, editor, action, detail string) error {
	err := s.store.AppendEdit(ctx, models.EditEvent{
		ID:       uuid.NewString(),
		ReportID: reportID,
		At:       s.now(),
		Editor:   editor,
		Action:   action,
		Detail:   detail,
	})
	if err != nil {
		s.logger.Error("Failed to append edit event",
			logging.F(logging.FieldReportID, reportID),
			logging.F(logging.FieldOperation, action),
			logging.F(logging.FieldError, err))
		return parsererror.Storage("append edit", err)
	}
	return nil
}

func validateSubmission(req SubmitRequest) error {
	if err := validation.AgentEmail(req.AgentEmail); err != nil {
		return err
	}
	if err := validation.Office(req.Office); err != nil {
		return err
	}
	if err := validation.ReportDate(req.ReportDate); err != nil {
		return err
	}
	if err := validation.NonNegative("expenses", req.Expenses); err != nil {
		return err
	}
	if err := validation.NonNegative("total_cash_in_hand", req.TotalCashInHand); err != nil {
		return err
	}
	for i, r := range req.Referrals {
		if err := validation.NonNegative(fmt.Sprintf("referrals[%d].amount", i), r.Amount); err != nil {
			return err
		}
	}
	return nil
}

// normalizeTransactions copies the form rows, filling office and report date
// from the report when a row does not carry its own.
func normalizeTransactions(in []models.Transaction, office, reportDate string) []models.Transaction {
	out := models.CloneTransactions(in)
	for i := range out {
		tx := &out[i]
		if strings.TrimSpace(tx.Office) == "" {
			tx.Office = office
		} else {
			tx.Office = textutils.ExtractOfficeCode(tx.Office)
		}
		if tx.ReportDate == "" {
			tx.ReportDate = dateutils.ReportDate(tx.OccurredAt)
		}
		if tx.ReportDate == "" {
			tx.ReportDate = reportDate
		}
	}
	return out
}

func editorOf(editor, fallback string) string {
	if e := strings.TrimSpace(editor); e != "" {
		return e
	}
	return fallback
}

// describeChange lists the deposits that moved.
func describeChange(before, after models.Summary) string {
	fields := []struct {
		name      string
		old, next decimal.Decimal
	}{
		{"trust_deposit", before.TrustDeposit, after.TrustDeposit},
		{"dmv_deposit", before.DMVDeposit, after.DMVDeposit},
		{"revenue_deposit", before.RevenueDeposit, after.RevenueDeposit},
	}

	var parts []string
	for _, f := range fields {
		if !f.old.Equal(f.next) {
			parts = append(parts, fmt.Sprintf("%s %s -> %s", f.name,
				currencyutils.FormatAmount(f.old), currencyutils.FormatAmount(f.next)))
		}
	}
	if len(parts) == 0 {
		return "deposits unchanged"
	}
	return strings.Join(parts, "; ")
}
