// Package rollup groups stored report summaries into office-day groups and
// region totals.
package rollup

import (
	"sort"
	"strings"

	"fjacquet/eod-recon/internal/models"
	"fjacquet/eod-recon/internal/textutils"
)

// ReportRef identifies a report inside a group.
type ReportRef struct {
	ID         string `json:"id"`
	AgentEmail string `json:"agent_email"`
	AgentName  string `json:"agent_name"`
}

// OfficeDay is the sum of every report for one office on one day.
type OfficeDay struct {
	ReportDate string         `json:"report_date"`
	Office     string         `json:"office"`
	Region     string         `json:"region"`
	Reports    []ReportRef    `json:"reports"`
	Summary    models.Summary `json:"summary"`
}

// RegionTotal is the sum of every office-day in a region.
type RegionTotal struct {
	Region      string         `json:"region"`
	Offices     []string       `json:"offices"`
	ReportCount int            `json:"report_count"`
	Summary     models.Summary `json:"summary"`
}

// Result holds both groupings, sorted.
type Result struct {
	OfficeDays []OfficeDay   `json:"office_days"`
	Regions    []RegionTotal `json:"regions"`
}

// Rollup groups reports using an office to region map fixed at construction.
type Rollup struct {
	regions map[string]string
}

// New copies the region map. Office keys are normalized to canonical codes.
func New(regions map[string]string) *Rollup {
	m := make(map[string]string, len(regions))
	for office, region := range regions {
		if region = strings.TrimSpace(region); region != "" {
			m[textutils.ExtractOfficeCode(office)] = region
		}
	}
	return &Rollup{regions: m}
}

// Regions returns a copy of the map in use.
func (r *Rollup) Regions() map[string]string {
	out := make(map[string]string, len(r.regions))
	for k, v := range r.regions {
		out[k] = v
	}
	return out
}

// RegionOf returns the region of an office, or RegionUnassigned.
func (r *Rollup) RegionOf(office string) string {
	if region, ok := r.regions[office]; ok {
		return region
	}
	return models.RegionUnassigned
}

// Build groups the reports.
func (r *Rollup) Build(reports []models.Report) Result {
	type dayKey struct{ date, office string }

	days := make(map[dayKey]*OfficeDay)
	for _, rep := range reports {
		k := dayKey{rep.ReportDate, rep.Office}
		od, ok := days[k]
		if !ok {
			od = &OfficeDay{ReportDate: rep.ReportDate, Office: rep.Office, Region: r.RegionOf(rep.Office)}
			days[k] = od
		}
		od.Reports = append(od.Reports, ReportRef{ID: rep.ID, AgentEmail: rep.AgentEmail, AgentName: rep.AgentName})
		od.Summary = od.Summary.Plus(rep.Summary)
	}

	var result Result
	regions := make(map[string]*RegionTotal)
	for _, od := range days {
		sort.Slice(od.Reports, func(i, j int) bool { return od.Reports[i].AgentEmail < od.Reports[j].AgentEmail })
		result.OfficeDays = append(result.OfficeDays, *od)

		rt, ok := regions[od.Region]
		if !ok {
			rt = &RegionTotal{Region: od.Region}
			regions[od.Region] = rt
		}
		if !contains(rt.Offices, od.Office) {
			rt.Offices = append(rt.Offices, od.Office)
		}
		rt.ReportCount += len(od.Reports)
		rt.Summary = rt.Summary.Plus(od.Summary)
	}

	sort.Slice(result.OfficeDays, func(i, j int) bool {
		a, b := result.OfficeDays[i], result.OfficeDays[j]
		if a.ReportDate != b.ReportDate {
			return a.ReportDate < b.ReportDate
		}
		return a.Office < b.Office
	})

	for _, rt := range regions {
		sort.Strings(rt.Offices)
		result.Regions = append(result.Regions, *rt)
	}
	sort.Slice(result.Regions, func(i, j int) bool {
		a, b := result.Regions[i].Region, result.Regions[j].Region
		if (a == models.RegionUnassigned) != (b == models.RegionUnassigned) {
			return b == models.RegionUnassigned
		}
		return a < b
	})

	return result
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
