package service

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"fjacquet/eod-recon/internal/models"
	"fjacquet/eod-recon/internal/parsererror"
	"fjacquet/eod-recon/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const matrixHeader = "Receipt,ID,Customer,Customer Type,Date / Time,CSR,Office,Type,Company,Policy,Financed,Reference #,Method,Premium,Fee,Total\n"

func matrixCSV(lines ...string) string {
	return matrixHeader + strings.Join(lines, "\n") + "\n"
}

func TestImportMatrix_ChunksWithPartialSuccess(t *testing.T) {
	svc, st, logger := newService(t, Options{ChunkSize: 2})
	st.ImportChunkErrors = map[int]error{1: errors.New("deadlock detected")}

	content := matrixCSV(
		"100,C1,Jane Roe,Personal,3/14/2025 9:15 AM,Maria Lopez,CA010,NEW,Broker Fee,P1,No,,Cash,500,50,550",
		"101,C2,John Doe,Personal,3/14/2025 9:30 AM,Maria Lopez,CA010,END,Endorsement Fee,P2,No,,Cash,0,25,25",
		"102,C3,Ann Lee,Personal,3/14/2025 10:00 AM,Maria Lopez,CA010,NEW,Broker Fee,P3,No,,Cash,300,40,340",
		"103,C4,Tom Ray,Personal,3/14/2025 11:00 AM,Maria Lopez,CA010,NEW,Broker Fee,P4,No,,Cash,200,40,240",
		"104,C5,Kim Poe,Personal,3/14/2025 12:00 PM,Maria Lopez,CA010,NEW,Broker Fee,P5,No,,Cash,100,40,140",
	)

	res, txs, err := svc.ImportMatrix(context.Background(), strings.NewReader(content), "upload.csv")
	require.NoError(t, err)
	assert.Len(t, txs, 5)
	assert.Equal(t, 5, res.Total)
	assert.Equal(t, 3, res.Inserted)
	assert.Equal(t, 2, res.Failed)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "rows 3-4")
	assert.NotEmpty(t, res.BatchID)
	assert.Equal(t, 3, st.ImportCalls)

	stored := st.ImportRows()
	require.Len(t, stored, 3)
	for _, r := range stored {
		assert.Equal(t, res.BatchID, r.BatchID)
		assert.NotEmpty(t, r.ImportID)
		assert.Equal(t, r.ImportID, r.Transaction.ImportID)
	}
	assert.True(t, logger.HasEntry("WARN", "Import chunk failed"))
	assert.True(t, logger.HasEntry("INFO", "Matrix import finished"))
}

func TestImportMatrix_InvalidFormat(t *testing.T) {
	svc, st, _ := newService(t, Options{})
	_, _, err := svc.ImportMatrix(context.Background(), strings.NewReader("just,some,words\nwithout,a,header\n"), "junk.csv")

	var fe *parsererror.InvalidFormatError
	assert.ErrorAs(t, err, &fe)
	assert.Equal(t, 0, st.ImportCalls)
}

func TestImportTransactions_CancelledContext(t *testing.T) {
	svc, st, _ := newService(t, Options{ChunkSize: 1})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := svc.ImportTransactions(ctx, []models.Transaction{{Receipt: "1"}, {Receipt: "2"}}, "test")
	assert.Equal(t, 0, res.Inserted)
	assert.Equal(t, 2, res.Failed)
	assert.Len(t, res.Errors, 2)
	assert.Equal(t, 0, st.ImportCalls)
}

func TestImportFiles_MergesExports(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.csv")
	b := filepath.Join(dir, "b.csv")
	require.NoError(t, os.WriteFile(a, []byte(matrixCSV(
		"100,C1,Jane Roe,Personal,3/14/2025 9:15 AM,Maria Lopez,CA010,NEW,Broker Fee,P1,No,,Cash,500,50,550")), 0600))
	require.NoError(t, os.WriteFile(b, []byte(matrixCSV(
		"200,C2,John Doe,Personal,3/13/2025 9:15 AM,Maria Lopez,CA010,NEW,Broker Fee,P2,No,,Cash,100,10,110")), 0600))

	svc, _, _ := newService(t, Options{})
	res, txs, err := svc.ImportFiles(context.Background(), []string{a, b})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Inserted)
	require.Len(t, txs, 2)
	assert.Equal(t, "200", txs[0].Receipt)
}

func seedReport(t *testing.T, st store.Store, id, email, office, date string, raw ...models.Transaction) {
	t.Helper()
	require.NoError(t, st.InsertReport(context.Background(), &models.Report{
		ID: id, AgentEmail: email, Office: office, ReportDate: date, RawTransactions: raw,
		CreatedAt: fixedNow, UpdatedAt: fixedNow,
	}))
}

func TestReconcile_UsesStoredReportsProfilesAndMappings(t *testing.T) {
	svc, st, _ := newService(t, Options{}, models.Profile{Email: "maria@agency.com", FullName: "Maria Lopez"})
	ctx := context.Background()

	content := matrixCSV(
		"100,C1,Jane Roe,Personal,3/14/2025 9:15 AM,Maria Lopez,CA010,NEW,Broker Fee,P1,No,,Cash,500,50,550",
		"101,C2,John Doe,Personal,3/14/2025 9:30 AM,Maria Lopez,CA010,END,Endorsement Fee,P2,No,,Cash,0,25,25",
		"300,C3,Ann Lee,Personal,3/14/2025 10:00 AM,Bobby T,CA010,NEW,Broker Fee,P3,No,,Cash,300,40,340",
	)
	stored := models.Transaction{Receipt: "100", PolicyNumber: "P1", CustomerName: "Jane Roe", Premium: decimal.NewFromInt(500)}
	seedReport(t, st, "r-maria", "maria@agency.com", "CA010", "2025-03-14", stored)
	seedReport(t, st, "r-robert", "robert@agency.com", "CA010", "2025-03-14")
	_, err := svc.SaveNameMapping(ctx, NameMappingRequest{CSVName: "Bobby T", AgentEmail: "Robert@Agency.com"})
	require.NoError(t, err)

	res, err := svc.ReconcileMatrix(ctx, strings.NewReader(content), "", "")
	require.NoError(t, err)
	require.Len(t, res.Groups, 2)

	byCSR := map[string]models.MatrixOverlayGroup{}
	for _, g := range res.Groups {
		byCSR[g.CSRName] = g
	}

	maria := byCSR["Maria Lopez"]
	assert.Equal(t, "r-maria", maria.MatchedReportID)
	assert.Equal(t, models.MatchDirectory, maria.MatchMethod)
	require.Len(t, maria.MissingReceipts, 1)
	assert.Equal(t, "101", maria.MissingReceipts[0].Receipt)

	bobby := byCSR["Bobby T"]
	assert.Equal(t, models.MatchMapping, bobby.MatchMethod)
	assert.Equal(t, "r-robert", bobby.MatchedReportID)
	assert.Len(t, bobby.MissingReceipts, 1)

	assert.Len(t, res.MissingReceipts["r-maria"], 1)
}

func TestReconcile_StorageFailureAborts(t *testing.T) {
	txs := []models.Transaction{{Receipt: "1", CSRName: "A", Office: "CA010", ReportDate: "2025-03-14", Total: decimal.NewFromInt(1)}}

	tests := []struct {
		name  string
		setup func(*store.MockStore)
		op    string
	}{
		{"reports", func(m *store.MockStore) { m.ListReportsError = errors.New("down") }, "list reports"},
		{"profiles", func(m *store.MockStore) { m.ListProfilesError = errors.New("down") }, "list profiles"},
		{"mappings", func(m *store.MockStore) { m.LoadMappingsError = errors.New("down") }, "load name mappings"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, st, _ := newService(t, Options{})
			tt.setup(st)

			_, err := svc.Reconcile(context.Background(), txs, "", "")
			var se *parsererror.StorageError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.op, se.Op)
		})
	}
}

func TestReconcile_UsesCachedDirectory(t *testing.T) {
	st := store.NewMockStore(models.Profile{Email: "maria@agency.com", FullName: "Maria Lopez"})
	svc := New(st, Options{Directory: store.NewCachedDirectory(st, time.Minute)}, nil)
	txs := []models.Transaction{{Receipt: "1", CSRName: "Maria Lopez", Office: "CA010", ReportDate: "2025-03-14", Total: decimal.NewFromInt(1)}}

	for i := 0; i < 3; i++ {
		_, err := svc.Reconcile(context.Background(), txs, "", "")
		require.NoError(t, err)
	}
	assert.Equal(t, 1, st.ListProfilesCalls)

	require.NoError(t, svc.SeedProfiles(context.Background(), []models.Profile{{Email: "new@agency.com", FullName: "New Agent"}}))
	_, err := svc.Reconcile(context.Background(), txs, "", "")
	require.NoError(t, err)
	assert.Equal(t, 2, st.ListProfilesCalls)
}

func TestSaveNameMapping_Validation(t *testing.T) {
	svc, _, _ := newService(t, Options{})
	ctx := context.Background()

	_, err := svc.SaveNameMapping(ctx, NameMappingRequest{CSVName: " ... ", AgentEmail: "a@x.com"})
	var ve *parsererror.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "csv_name", ve.Field)

	_, err = svc.SaveNameMapping(ctx, NameMappingRequest{CSVName: "Al", AgentEmail: "nope"})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "agent_email", ve.Field)

	m, err := svc.SaveNameMapping(ctx, NameMappingRequest{CSVName: " Al Smith ", AgentEmail: "AL@X.com"})
	require.NoError(t, err)
	assert.Equal(t, "Al Smith", m.CSVName)
	assert.Equal(t, "al@x.com", m.AgentEmail)
	assert.Equal(t, fixedNow, m.UpdatedAt)

	all, err := svc.ListNameMappings(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRegionsAndRollup(t *testing.T) {
	svc, st, _ := newService(t, Options{})
	ctx := context.Background()

	saved, err := svc.SaveRegions(ctx, map[string]string{"ca010 - Fresno": "Central", "CA011": "Central", "TX001": " "})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"CA010": "Central", "CA011": "Central"}, saved)

	seedReport(t, st, "r1", "a@x.com", "CA010", "2025-03-14")
	seedReport(t, st, "r2", "b@x.com", "CA011", "2025-03-14")
	seedReport(t, st, "r3", "c@x.com", "NV500", "2025-03-14")
	seedReport(t, st, "r4", "c@x.com", "NV500", "2025-04-01")

	res, err := svc.Rollup(ctx, models.ReportFilter{From: "2025-03-01", To: "2025-03-31"})
	require.NoError(t, err)
	assert.Len(t, res.OfficeDays, 3)
	require.Len(t, res.Regions, 2)
	assert.Equal(t, "Central", res.Regions[0].Region)
	assert.Equal(t, 2, res.Regions[0].ReportCount)
	assert.Equal(t, models.RegionUnassigned, res.Regions[1].Region)

	st.LoadRegionsError = errors.New("down")
	_, err = svc.Rollup(ctx, models.ReportFilter{})
	assert.Error(t, err)
}

func TestSeedProfiles_ValidatesEmails(t *testing.T) {
	svc, _, _ := newService(t, Options{})
	err := svc.SeedProfiles(context.Background(), []models.Profile{{Email: "ok@x.com"}, {Email: "broken"}})
	assert.ErrorContains(t, err, "profile 2")
}

func TestReconcileFiles_SkipsUnreadableFiles(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.csv")
	require.NoError(t, os.WriteFile(good, []byte(matrixCSV(
		"100,C1,Jane Roe,Personal,3/14/2025 9:15 AM,Bobby T,CA010,NEW,Broker Fee,P1,No,,Cash,500,50,550")), 0600))

	svc, st, logger := newService(t, Options{})
	res, err := svc.ReconcileFiles(context.Background(), []string{good, filepath.Join(dir, "missing.csv")}, "", "")
	require.NoError(t, err)
	require.Len(t, res.Flagged, 1)
	assert.True(t, res.Flagged[0].IsMissingEOD)
	assert.Empty(t, st.ImportRows())
	assert.True(t, logger.HasEntry("WARN", "Failed to parse file"))

	_, err = svc.ReconcileFiles(context.Background(), []string{filepath.Join(dir, "missing.csv")}, "", "")
	assert.Error(t, err)
}

type stubParser struct {
	txs []models.Transaction
	err error
}

func (p stubParser) Parse(r io.Reader) ([]models.Transaction, error) { return p.txs, p.err }

func (p stubParser) ParseFile(path string) ([]models.Transaction, error) { return p.txs, p.err }

func TestOptions_CustomParser(t *testing.T) {
	tx := models.NewTransactionBuilder().WithReceipt("9").WithCSR("Maria Lopez").WithOffice("CA010").
		WithOccurredAt("3/14/2025 9:15 AM").WithType("NEW").WithCompany("Broker Fee").
		WithMethod("Cash").WithAmounts("10", "1", "11").Build()

	svc, _, _ := newService(t, Options{Parser: stubParser{txs: []models.Transaction{tx}}})
	res, _, err := svc.ImportMatrix(context.Background(), strings.NewReader("ignored"), "stub")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Inserted)

	failing, _, _ := newService(t, Options{Parser: stubParser{err: errors.New("unreadable")}})
	_, err = failing.ReconcileMatrix(context.Background(), strings.NewReader("x"), "", "")
	assert.EqualError(t, err, "unreadable")
}
