package rollup

import (
	"testing"

	"fjacquet/eod-recon/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rep(id, email, office, date string, trust int64, nb int) models.Report {
	return models.Report{
		ID: id, AgentEmail: email, Office: office, ReportDate: date,
		Summary: models.Summary{NbRwCount: nb, TrustDeposit: decimal.NewFromInt(trust)},
	}
}

func TestBuild(t *testing.T) {
	r := New(map[string]string{"CA010 - Fresno": "Central", "CA011": "Central", "TX204": "Texas", "CA099": " "})

	res := r.Build([]models.Report{
		rep("3", "b@x", "CA010", "2025-03-14", 100, 1),
		rep("1", "a@x", "CA010", "2025-03-14", 50, 2),
		rep("2", "c@x", "CA011", "2025-03-14", 25, 0),
		rep("4", "d@x", "TX204", "2025-03-13", 10, 1),
		rep("5", "e@x", "CA099", "2025-03-14", 5, 0),
	})

	require.Len(t, res.OfficeDays, 4)
	assert.Equal(t, "2025-03-13", res.OfficeDays[0].ReportDate)
	first14 := res.OfficeDays[1]
	assert.Equal(t, "CA010", first14.Office)
	assert.Equal(t, "Central", first14.Region)
	require.Len(t, first14.Reports, 2)
	assert.Equal(t, "a@x", first14.Reports[0].AgentEmail)
	assert.Equal(t, 3, first14.Summary.NbRwCount)
	assert.True(t, first14.Summary.TrustDeposit.Equal(decimal.NewFromInt(150)))

	require.Len(t, res.Regions, 3)
	assert.Equal(t, "Central", res.Regions[0].Region)
	assert.Equal(t, []string{"CA010", "CA011"}, res.Regions[0].Offices)
	assert.Equal(t, 3, res.Regions[0].ReportCount)
	assert.True(t, res.Regions[0].Summary.TrustDeposit.Equal(decimal.NewFromInt(175)))
	assert.Equal(t, "Texas", res.Regions[1].Region)
	assert.Equal(t, models.RegionUnassigned, res.Regions[2].Region)
	assert.Equal(t, []string{"CA099"}, res.Regions[2].Offices)
}

func TestBuild_Empty(t *testing.T) {
	res := New(nil).Build(nil)
	assert.Empty(t, res.OfficeDays)
	assert.Empty(t, res.Regions)
}

func TestRegionsIsACopy(t *testing.T) {
	r := New(map[string]string{"CA010": "Central"})
	m := r.Regions()
	m["CA010"] = "Changed"
	assert.Equal(t, "Central", r.RegionOf("CA010"))
	assert.Equal(t, models.RegionUnassigned, r.RegionOf("ZZ999"))
}
