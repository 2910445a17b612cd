package reconcile

import (
	"testing"

	"fjacquet/eod-recon/internal/logging"
	"fjacquet/eod-recon/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func imported(receipt, csr, office, date, customer, policy, premium string) models.Transaction {
	return models.NewTransactionBuilder().
		WithReceipt(receipt).
		WithCSR(csr).
		WithOffice(office).
		WithOccurredAt(date).
		WithCustomer("", customer).
		WithPolicy(policy).
		WithType("NEW").
		WithCompany("Progressive").
		WithMethod("Cash").
		WithAmounts(premium, "0", premium).
		WithImportID().
		Build()
}

func report(id, email, name, office, date string, raw ...models.Transaction) models.Report {
	return models.Report{ID: id, AgentEmail: email, AgentName: name, Office: office, ReportDate: date, RawTransactions: raw}
}

func newReconciler() (*Reconciler, *logging.MockLogger) {
	logger := logging.NewMockLogger()
	return New(nil, logger), logger
}

func TestReconcile_DirectoryMatchWithoutDiscrepancy(t *testing.T) {
	r, logger := newReconciler()
	row := imported("100", "Maria Lopez", "CA010", "2025-03-14", "Jane Roe", "P1", "500")

	res := r.Reconcile(Input{
		Transactions: []models.Transaction{row},
		Reports:      []models.Report{report("r1", "maria@agency.com", "Maria Lopez", "CA010", "2025-03-14", row)},
		Profiles:     []models.Profile{{Email: "maria@agency.com", FullName: "Maria Lopez"}},
	})

	require.Len(t, res.Groups, 1)
	g := res.Groups[0]
	assert.False(t, g.IsMissingEOD)
	assert.False(t, g.IsUnmappedName)
	assert.Equal(t, models.MatchDirectory, g.MatchMethod)
	assert.Equal(t, 100, g.MatchScore)
	assert.Equal(t, "r1", g.MatchedReportID)
	assert.Empty(t, g.MissingReceipts)
	assert.Empty(t, res.Flagged)
	assert.Equal(t, 1, g.Summary.NbRwCount)
	assert.True(t, logger.HasEntry("INFO", "Reconciliation complete"))
}

func TestReconcile_MappingOverridesDirectory(t *testing.T) {
	r, _ := newReconciler()
	row := imported("100", "M. Lopez", "CA010", "2025-03-14", "Jane Roe", "P1", "500")

	res := r.Reconcile(Input{
		Transactions: []models.Transaction{row},
		Reports:      []models.Report{report("r1", "maria@agency.com", "Maria Lopez", "CA010", "2025-03-14", row)},
		Profiles:     []models.Profile{{Email: "other@agency.com", FullName: "M Lopez"}},
		Mappings:     []models.NameMapping{{CSVName: "m lopez", AgentEmail: "Maria@Agency.com"}},
	})

	require.Len(t, res.Groups, 1)
	assert.Equal(t, models.MatchMapping, res.Groups[0].MatchMethod)
	assert.Equal(t, "r1", res.Groups[0].MatchedReportID)
}

func TestReconcile_ResolvedIdentitySearchesOffice(t *testing.T) {
	row := imported("100", "Maria Lopez", "CA010", "2025-03-14", "Jane Roe", "P1", "500")

	tests := []struct {
		name          string
		reports       []models.Report
		wantMissing   bool
		wantMatched   string
		wantScore     int
		wantCollision string
	}{
		{
			name:        "stale mapping links report filed under another email",
			reports:     []models.Report{report("r2", "mlopez@agency.com", "Maria Lopez", "CA010", "2025-03-14", row)},
			wantMatched: "r2",
			wantScore:   100,
		},
		{
			name:          "weak candidate is a collision",
			reports:       []models.Report{report("r3", "mgarcia@agency.com", "Maria Garcia", "CA010", "2025-03-14")},
			wantMissing:   true,
			wantCollision: "r3",
		},
		{
			name:        "unrelated agent leaves it missing",
			reports:     []models.Report{report("r4", "john@agency.com", "John Smith", "CA010", "2025-03-14")},
			wantMissing: true,
		},
		{
			name:        "other office is not searched",
			reports:     []models.Report{report("r5", "mlopez@agency.com", "Maria Lopez", "CA020", "2025-03-14")},
			wantMissing: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newReconciler()
			res := r.Reconcile(Input{
				Transactions: []models.Transaction{row},
				Reports:      tt.reports,
				Mappings:     []models.NameMapping{{CSVName: "Maria Lopez", AgentEmail: "maria@agency.com"}},
			})

			require.Len(t, res.Groups, 1)
			g := res.Groups[0]
			assert.Equal(t, tt.wantMissing, g.IsMissingEOD)
			assert.False(t, g.IsUnmappedName)
			assert.Equal(t, models.MatchMapping, g.MatchMethod)
			assert.Equal(t, "maria@agency.com", g.ResolvedEmail)
			assert.Equal(t, tt.wantMatched, g.MatchedReportID)
			assert.Equal(t, tt.wantScore, g.MatchScore)
			assert.Equal(t, tt.wantCollision, g.CollisionReportID)
			if tt.wantCollision != "" {
				assert.Positive(t, g.CollisionScore)
			}
		})
	}
}

func TestReconcile_FuzzyAutoLink(t *testing.T) {
	r, _ := newReconciler()
	row := imported("100", "Maria J Lopez", "CA010", "2025-03-14", "Jane Roe", "P1", "500")

	res := r.Reconcile(Input{
		Transactions: []models.Transaction{row},
		Reports: []models.Report{
			report("r1", "maria@agency.com", "Maria Lopez", "CA010", "2025-03-14", row),
			report("r2", "john@agency.com", "John Smith", "CA010", "2025-03-14"),
		},
	})

	require.Len(t, res.Groups, 1)
	g := res.Groups[0]
	assert.True(t, g.IsUnmappedName)
	assert.False(t, g.IsMissingEOD)
	assert.Equal(t, models.MatchFuzzy, g.MatchMethod)
	assert.Equal(t, 99, g.MatchScore)
	assert.Equal(t, "r1", g.MatchedReportID)
	assert.Equal(t, "maria@agency.com", g.ResolvedEmail)
}

func TestReconcile_CollisionBelowThreshold(t *testing.T) {
	r, _ := newReconciler()
	row := imported("100", "Maria Garcia", "CA010", "2025-03-14", "Jane Roe", "P1", "500")

	res := r.Reconcile(Input{
		Transactions: []models.Transaction{row},
		Reports:      []models.Report{report("r1", "maria@agency.com", "", "CA010", "2025-03-14")},
		Profiles:     []models.Profile{{Email: "maria@agency.com", FullName: "Maria Lopez"}},
	})

	require.Len(t, res.Flagged, 1)
	g := res.Flagged[0]
	assert.True(t, g.IsMissingEOD)
	assert.True(t, g.IsUnmappedName)
	assert.Equal(t, "r1", g.CollisionReportID)
	assert.Equal(t, "Maria Lopez", g.CollisionReportName)
	assert.Equal(t, 45, g.CollisionScore)
	assert.Equal(t, 0, g.MatchScore)
}

func TestReconcile_NoSubmissionsInOffice(t *testing.T) {
	r, _ := newReconciler()
	row := imported("100", "Maria Garcia", "CA010", "2025-03-14", "Jane Roe", "P1", "500")

	res := r.Reconcile(Input{
		Transactions: []models.Transaction{row},
		Reports:      []models.Report{report("r1", "x@agency.com", "Maria Garcia", "CA099", "2025-03-14")},
	})

	require.Len(t, res.Flagged, 1)
	assert.True(t, res.Flagged[0].IsMissingEOD)
	assert.Equal(t, models.MatchNone, res.Flagged[0].MatchMethod)
	assert.Empty(t, res.Flagged[0].CollisionReportID)
}

func TestReconcile_TieBreaksDeterministically(t *testing.T) {
	r, _ := newReconciler()
	row := imported("100", "Maria Garcia", "CA010", "2025-03-14", "Jane Roe", "P1", "500")
	reports := []models.Report{
		report("r2", "b@agency.com", "Maria Lopez", "CA010", "2025-03-14"),
		report("r1", "a@agency.com", "Maria Perez", "CA010", "2025-03-14"),
	}

	for i := 0; i < 5; i++ {
		res := r.Reconcile(Input{Transactions: []models.Transaction{row}, Reports: reports})
		require.Len(t, res.Flagged, 1)
		assert.Equal(t, "r1", res.Flagged[0].CollisionReportID)
	}
}

func TestReconcile_Discrepancies(t *testing.T) {
	r, _ := newReconciler()
	stored := []models.Transaction{
		imported("100", "Maria Lopez", "CA010", "2025-03-14", "Jane Roe", "P1", "500"),
		imported("", "Maria Lopez", "CA010", "2025-03-14", "", "P2", "80"),
		imported("", "Maria Lopez", "CA010", "2025-03-14", "Tom Hill", "", "120"),
	}
	rows := []models.Transaction{
		imported("100", "Maria Lopez", "CA010", "2025-03-14", "Someone", "", "1"),     // receipt match
		imported("900", "Maria Lopez", "CA010", "2025-03-14", "Other", "P2", "2"),     // policy match
		imported("901", "Maria Lopez", "CA010", "2025-03-14", "tom  hill", "", "120"), // customer+premium match
		imported("902", "Maria Lopez", "CA010", "2025-03-14", "Tom Hill", "", "121"),  // missing
	}

	res := r.Reconcile(Input{
		Transactions: rows,
		Reports:      []models.Report{report("r1", "maria@agency.com", "Maria Lopez", "CA010", "2025-03-14", stored...)},
		Profiles:     []models.Profile{{Email: "maria@agency.com", FullName: "Maria Lopez"}},
	})

	require.Len(t, res.Flagged, 1)
	g := res.Flagged[0]
	assert.False(t, g.IsMissingEOD)
	require.Len(t, g.MissingReceipts, 1)
	assert.Equal(t, "902", g.MissingReceipts[0].Receipt)
	assert.Equal(t, g.MissingReceipts, res.MissingReceipts["r1"])
}

func TestReconcile_WashAndDateRange(t *testing.T) {
	r, _ := newReconciler()
	sale := imported("100", "Maria Lopez", "CA010", "2025-03-14", "Jane Roe", "P1", "500")
	void := imported("100", "Maria Lopez", "CA010", "2025-03-14", "Jane Roe", "P1", "-500")
	outside := imported("200", "Maria Lopez", "CA010", "2025-03-20", "Jane Roe", "P1", "10")
	undated := imported("300", "Maria Lopez", "CA010", "garbage", "Jane Roe", "P1", "10")

	res := r.Reconcile(Input{
		Transactions: []models.Transaction{sale, void, outside, undated},
		From:         "2025-03-14",
		To:           "2025-03-15",
	})

	assert.Empty(t, res.Groups)
	assert.Equal(t, []string{"100"}, res.WashedReceipts)
	assert.Equal(t, 2, res.SkippedRows)
}

func TestReconcile_GroupsByDayOfficeAndName(t *testing.T) {
	r, _ := newReconciler()
	res := r.Reconcile(Input{Transactions: []models.Transaction{
		imported("1", "Maria Lopez", "CA010", "2025-03-15", "A", "", "1"),
		imported("2", "MARIA  LOPEZ", "CA010", "2025-03-14", "B", "", "1"),
		imported("3", "maria lopez", "CA010", "2025-03-14", "C", "", "1"),
		imported("4", "Maria Lopez", "CA011", "2025-03-14", "D", "", "1"),
	}})

	require.Len(t, res.Groups, 3)
	assert.Equal(t, models.OverlayKey{ReportDate: "2025-03-14", Office: "CA010", NormalizedCSR: "maria lopez"}, res.Groups[0].Key)
	assert.Len(t, res.Groups[0].Transactions, 2)
	assert.Equal(t, "CA011", res.Groups[1].Key.Office)
	assert.Equal(t, "2025-03-15", res.Groups[2].Key.ReportDate)
	assert.Len(t, res.Flagged, 3)
}
