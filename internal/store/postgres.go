package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fjacquet/eod-recon/internal/logging"
	"fjacquet/eod-recon/internal/models"
	"fjacquet/eod-recon/internal/parsererror"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// schema is applied in order by Migrate. Every statement is idempotent.
// The (report_date, office, agent) index is deliberately not unique; the
// duplicate guard lives in the submission service.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS eod_reports (
		id                 TEXT PRIMARY KEY,
		agent_email        TEXT NOT NULL,
		agent_name         TEXT NOT NULL DEFAULT '',
		office             TEXT NOT NULL,
		report_date        TEXT NOT NULL,
		raw_transactions   JSONB NOT NULL DEFAULT '[]',
		summary            JSONB NOT NULL DEFAULT '{}',
		expenses           NUMERIC NOT NULL DEFAULT 0,
		referrals          JSONB NOT NULL DEFAULT '[]',
		ar_corrections     JSONB NOT NULL DEFAULT '[]',
		total_cash_in_hand NUMERIC NOT NULL DEFAULT 0,
		cash_difference    NUMERIC NOT NULL DEFAULT 0,
		cash_verified      BOOLEAN NOT NULL DEFAULT FALSE,
		deposit_verified   BOOLEAN NOT NULL DEFAULT FALSE,
		verified_by        TEXT NOT NULL DEFAULT '',
		verified_at        TIMESTAMPTZ,
		receipt_urls       JSONB NOT NULL DEFAULT '[]',
		created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS eod_reports_key_idx ON eod_reports (report_date, office, lower(agent_email))`,
	`CREATE TABLE IF NOT EXISTS eod_report_edits (
		id        TEXT PRIMARY KEY,
		report_id TEXT NOT NULL,
		at        TIMESTAMPTZ NOT NULL,
		editor    TEXT NOT NULL DEFAULT '',
		action    TEXT NOT NULL,
		detail    TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS eod_report_edits_report_idx ON eod_report_edits (report_id, at)`,
	`CREATE TABLE IF NOT EXISTS name_mappings (
		csv_key     TEXT PRIMARY KEY,
		csv_name    TEXT NOT NULL,
		agent_email TEXT NOT NULL,
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS profiles (
		email     TEXT PRIMARY KEY,
		full_name TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS office_regions (
		office TEXT PRIMARY KEY,
		region TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS matrix_import_rows (
		import_id   TEXT PRIMARY KEY,
		batch_id    TEXT NOT NULL,
		report_date TEXT NOT NULL DEFAULT '',
		office      TEXT NOT NULL DEFAULT '',
		csr_name    TEXT NOT NULL DEFAULT '',
		receipt     TEXT NOT NULL DEFAULT '',
		payload     JSONB NOT NULL,
		imported_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

const reportColumns = `id, agent_email, agent_name, office, report_date,
	raw_transactions, summary, expenses::text, referrals, ar_corrections,
	total_cash_in_hand::text, cash_difference::text, cash_verified, deposit_verified,
	verified_by, verified_at, receipt_urls, created_at, updated_at`

var importColumns = []string{
	"import_id", "batch_id", "report_date", "office", "csr_name", "receipt", "payload", "imported_at",
}

// PostgresStore implements Store on a pgx connection pool.
type PostgresStore struct {
	DB     *pgxpool.Pool
	logger logging.Logger
}

// NewPostgresStore opens a pool on dsn and checks connectivity.
func NewPostgresStore(ctx context.Context, dsn string, maxConns int32, logger logging.Logger) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, parsererror.Storage("connect", fmt.Errorf("invalid database URL: %w", err))
	}
	if maxConns > 0 {
		poolCfg.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, parsererror.Storage("connect", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, parsererror.Storage("connect", err)
	}
	return NewPostgresStoreFromPool(pool, logger), nil
}

// NewPostgresStoreFromPool wraps an existing pool.
func NewPostgresStoreFromPool(pool *pgxpool.Pool, logger logging.Logger) *PostgresStore {
	return &PostgresStore{DB: pool, logger: logging.Component(logger, "postgres_store")}
}

// Close releases the pool.
func (s *PostgresStore) Close() {
	s.DB.Close()
}

// Migrate creates the tables if they do not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := s.DB.Exec(ctx, stmt); err != nil {
			return parsererror.Storage("migrate", fmt.Errorf("statement %d: %w", i+1, err))
		}
	}
	s.logger.Info("Database schema ready", logging.F(logging.FieldCount, len(schema)))
	return nil
}

type reportJSON struct {
	raw, summary, referrals, corrections, urls []byte
}

func marshalReport(r *models.Report) (reportJSON, error) {
	var out reportJSON
	var err error
	if out.raw, err = json.Marshal(nonNil(r.RawTransactions)); err != nil {
		return out, err
	}
	if out.summary, err = json.Marshal(r.Summary); err != nil {
		return out, err
	}
	if out.referrals, err = json.Marshal(nonNil(r.Referrals)); err != nil {
		return out, err
	}
	if out.corrections, err = json.Marshal(nonNil(r.ARCorrections)); err != nil {
		return out, err
	}
	if out.urls, err = json.Marshal(nonNil(r.ReceiptURLs)); err != nil {
		return out, err
	}
	return out, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// InsertReport implements ReportStore.
func (s *PostgresStore) InsertReport(ctx context.Context, r *models.Report) error {
	js, err := marshalReport(r)
	if err != nil {
		return parsererror.Storage("insert report", err)
	}

	query := `
		INSERT INTO eod_reports (
			id, agent_email, agent_name, office, report_date,
			raw_transactions, summary, expenses, referrals, ar_corrections,
			total_cash_in_hand, cash_difference, cash_verified, deposit_verified,
			verified_by, verified_at, receipt_urls, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8::numeric, $9, $10,
			$11::numeric, $12::numeric, $13, $14, $15, $16, $17, $18, $19)
	`
	_, err = s.DB.Exec(ctx, query,
		r.ID, r.AgentEmail, r.AgentName, r.Office, r.ReportDate,
		js.raw, js.summary, r.Expenses.String(), js.referrals, js.corrections,
		r.TotalCashInHand.String(), r.CashDifference.String(), r.CashVerified, r.DepositVerified,
		r.VerifiedBy, r.VerifiedAt, js.urls, r.CreatedAt, r.UpdatedAt,
	)
	return parsererror.Storage("insert report", err)
}

// UpdateReport implements ReportStore.
func (s *PostgresStore) UpdateReport(ctx context.Context, r *models.Report) error {
	js, err := marshalReport(r)
	if err != nil {
		return parsererror.Storage("update report", err)
	}

	query := `
		UPDATE eod_reports SET
			agent_email = $2, agent_name = $3, office = $4, report_date = $5,
			raw_transactions = $6, summary = $7, expenses = $8::numeric,
			referrals = $9, ar_corrections = $10,
			total_cash_in_hand = $11::numeric, cash_difference = $12::numeric,
			cash_verified = $13, deposit_verified = $14,
			verified_by = $15, verified_at = $16, receipt_urls = $17, updated_at = $18
		WHERE id = $1
	`
	tag, err := s.DB.Exec(ctx, query,
		r.ID, r.AgentEmail, r.AgentName, r.Office, r.ReportDate,
		js.raw, js.summary, r.Expenses.String(),
		js.referrals, js.corrections,
		r.TotalCashInHand.String(), r.CashDifference.String(),
		r.CashVerified, r.DepositVerified,
		r.VerifiedBy, r.VerifiedAt, js.urls, r.UpdatedAt,
	)
	if err != nil {
		return parsererror.Storage("update report", err)
	}
	if tag.RowsAffected() == 0 {
		return parsererror.Storage("update report", fmt.Errorf("report %s: %w", r.ID, parsererror.ErrNotFound))
	}
	return nil
}

// GetReport implements ReportStore.
func (s *PostgresStore) GetReport(ctx context.Context, id string) (*models.Report, error) {
	row := s.DB.QueryRow(ctx, `SELECT `+reportColumns+` FROM eod_reports WHERE id = $1`, id)
	r, err := scanReport(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("report %s: %w", id, parsererror.ErrNotFound)
	}
	if err != nil {
		return nil, parsererror.Storage("get report", err)
	}
	return r, nil
}

// FindReport implements ReportStore. The oldest report wins if the key is
// somehow present twice.
func (s *PostgresStore) FindReport(ctx context.Context, key models.ReportKey) (*models.Report, error) {
	row := s.DB.QueryRow(ctx, `
		SELECT `+reportColumns+`
		FROM eod_reports
		WHERE report_date = $1 AND office = $2 AND lower(agent_email) = $3
		ORDER BY created_at
		LIMIT 1`,
		key.ReportDate, key.Office, key.AgentEmail,
	)
	r, err := scanReport(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, parsererror.ErrNotFound
	}
	if err != nil {
		return nil, parsererror.Storage("find report", err)
	}
	return r, nil
}

// ListReports implements ReportStore.
func (s *PostgresStore) ListReports(ctx context.Context, filter models.ReportFilter) ([]models.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM eod_reports
		WHERE ($1 = '' OR report_date >= $1)
		  AND ($2 = '' OR report_date <= $2)
		  AND ($3 = '' OR office = $3)`
	rows, err := s.DB.Query(ctx, query, filter.From, filter.To, filter.Office)
	if err != nil {
		return nil, parsererror.Storage("list reports", err)
	}
	defer rows.Close()

	var reports []models.Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, parsererror.Storage("list reports", err)
		}
		// TEXT comparison also admits malformed dates; the shared filter drops them.
		if matchesFilter(*r, filter) {
			reports = append(reports, *r)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, parsererror.Storage("list reports", err)
	}
	sortReports(reports)
	return reports, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (*models.Report, error) {
	var (
		r                                    models.Report
		raw, summary, referrals, corr, urls  []byte
		expenses, cashInHand, cashDifference string
		verifiedAt                           *time.Time
	)
	err := row.Scan(
		&r.ID, &r.AgentEmail, &r.AgentName, &r.Office, &r.ReportDate,
		&raw, &summary, &expenses, &referrals, &corr,
		&cashInHand, &cashDifference, &r.CashVerified, &r.DepositVerified,
		&r.VerifiedBy, &verifiedAt, &urls, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(raw, &r.RawTransactions); err != nil {
		return nil, fmt.Errorf("decoding raw_transactions of %s: %w", r.ID, err)
	}
	if err := json.Unmarshal(summary, &r.Summary); err != nil {
		return nil, fmt.Errorf("decoding summary of %s: %w", r.ID, err)
	}
	if err := json.Unmarshal(referrals, &r.Referrals); err != nil {
		return nil, fmt.Errorf("decoding referrals of %s: %w", r.ID, err)
	}
	if err := json.Unmarshal(corr, &r.ARCorrections); err != nil {
		return nil, fmt.Errorf("decoding ar_corrections of %s: %w", r.ID, err)
	}
	if err := json.Unmarshal(urls, &r.ReceiptURLs); err != nil {
		return nil, fmt.Errorf("decoding receipt_urls of %s: %w", r.ID, err)
	}

	r.Expenses = decimal.RequireFromString(expenses)
	r.TotalCashInHand = decimal.RequireFromString(cashInHand)
	r.CashDifference = decimal.RequireFromString(cashDifference)
	r.VerifiedAt = verifiedAt
	return &r, nil
}

// AppendEdit implements EditLog.
func (s *PostgresStore) AppendEdit(ctx context.Context, e models.EditEvent) error {
	_, err := s.DB.Exec(ctx,
		`INSERT INTO eod_report_edits (id, report_id, at, editor, action, detail)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		e.ID, e.ReportID, e.At, e.Editor, e.Action, e.Detail,
	)
	return parsererror.Storage("append edit", err)
}

// ListEdits implements EditLog.
func (s *PostgresStore) ListEdits(ctx context.Context, reportID string) ([]models.EditEvent, error) {
	rows, err := s.DB.Query(ctx,
		`SELECT id, report_id, at, editor, action, detail
		 FROM eod_report_edits WHERE report_id = $1 ORDER BY at`, reportID)
	if err != nil {
		return nil, parsererror.Storage("list edits", err)
	}
	defer rows.Close()

	var events []models.EditEvent
	for rows.Next() {
		var e models.EditEvent
		if err := rows.Scan(&e.ID, &e.ReportID, &e.At, &e.Editor, &e.Action, &e.Detail); err != nil {
			return nil, parsererror.Storage("list edits", err)
		}
		events = append(events, e)
	}
	return events, parsererror.Storage("list edits", rows.Err())
}

// LoadNameMappings implements NameMappingStore.
func (s *PostgresStore) LoadNameMappings(ctx context.Context) ([]models.NameMapping, error) {
	rows, err := s.DB.Query(ctx, `SELECT csv_name, agent_email, updated_at FROM name_mappings ORDER BY csv_key`)
	if err != nil {
		return nil, parsererror.Storage("load name mappings", err)
	}
	defer rows.Close()

	var mappings []models.NameMapping
	for rows.Next() {
		var m models.NameMapping
		if err := rows.Scan(&m.CSVName, &m.AgentEmail, &m.UpdatedAt); err != nil {
			return nil, parsererror.Storage("load name mappings", err)
		}
		mappings = append(mappings, m)
	}
	return mappings, parsererror.Storage("load name mappings", rows.Err())
}

// UpsertNameMapping implements NameMappingStore.
func (s *PostgresStore) UpsertNameMapping(ctx context.Context, m models.NameMapping) error {
	_, err := s.DB.Exec(ctx, `
		INSERT INTO name_mappings (csv_key, csv_name, agent_email, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (csv_key) DO UPDATE
		SET csv_name = EXCLUDED.csv_name,
		    agent_email = EXCLUDED.agent_email,
		    updated_at = EXCLUDED.updated_at`,
		MappingKey(m.CSVName), m.CSVName, m.AgentEmail, m.UpdatedAt,
	)
	return parsererror.Storage("upsert name mapping", err)
}

// ListProfiles implements ProfileDirectory.
func (s *PostgresStore) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	rows, err := s.DB.Query(ctx, `SELECT email, full_name FROM profiles ORDER BY email`)
	if err != nil {
		return nil, parsererror.Storage("list profiles", err)
	}
	defer rows.Close()

	var profiles []models.Profile
	for rows.Next() {
		var p models.Profile
		if err := rows.Scan(&p.Email, &p.FullName); err != nil {
			return nil, parsererror.Storage("list profiles", err)
		}
		profiles = append(profiles, p)
	}
	return profiles, parsererror.Storage("list profiles", rows.Err())
}

// InsertImportRows implements ImportStore. The chunk is written with COPY, so
// it either lands whole or not at all.
func (s *PostgresStore) InsertImportRows(ctx context.Context, rows []models.ImportRow) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	data := make([][]any, 0, len(rows))
	for _, row := range rows {
		payload, err := json.Marshal(row.Transaction)
		if err != nil {
			return 0, parsererror.Storage("insert import rows", err)
		}
		tx := row.Transaction
		data = append(data, []any{
			row.ImportID, row.BatchID, tx.ReportDate, tx.Office, tx.CSRName, tx.Receipt, payload, row.ImportedAt,
		})
	}

	n, err := s.DB.CopyFrom(ctx, pgx.Identifier{"matrix_import_rows"}, importColumns, pgx.CopyFromRows(data))
	if err != nil {
		return 0, parsererror.Storage("insert import rows", err)
	}
	return int(n), nil
}

// LoadRegions implements RegionStore.
func (s *PostgresStore) LoadRegions(ctx context.Context) (map[string]string, error) {
	rows, err := s.DB.Query(ctx, `SELECT office, region FROM office_regions`)
	if err != nil {
		return nil, parsererror.Storage("load regions", err)
	}
	defer rows.Close()

	regions := make(map[string]string)
	for rows.Next() {
		var office, region string
		if err := rows.Scan(&office, &region); err != nil {
			return nil, parsererror.Storage("load regions", err)
		}
		regions[office] = region
	}
	return regions, parsererror.Storage("load regions", rows.Err())
}

// SaveRegions implements RegionStore. The whole map is replaced in one transaction.
func (s *PostgresStore) SaveRegions(ctx context.Context, regions map[string]string) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return parsererror.Storage("save regions", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM office_regions`); err != nil {
		return parsererror.Storage("save regions", err)
	}
	for office, region := range regions {
		if _, err := tx.Exec(ctx,
			`INSERT INTO office_regions (office, region) VALUES ($1, $2)`, office, region); err != nil {
			return parsererror.Storage("save regions", err)
		}
	}
	return parsererror.Storage("save regions", tx.Commit(ctx))
}

// SeedProfiles upserts directory entries. The directory is otherwise read-only.
func (s *PostgresStore) SeedProfiles(ctx context.Context, profiles []models.Profile) error {
	for _, p := range profiles {
		_, err := s.DB.Exec(ctx, `
			INSERT INTO profiles (email, full_name) VALUES ($1, $2)
			ON CONFLICT (email) DO UPDATE SET full_name = EXCLUDED.full_name`,
			p.Email, p.FullName)
		if err != nil {
			return parsererror.Storage("seed profiles", err)
		}
	}
	return nil
}
