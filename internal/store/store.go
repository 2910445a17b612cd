// Package store defines the row-store collaborators used by the EOD services
// and provides in-memory, YAML file and PostgreSQL implementations.
package store

import (
	"context"
	"sort"
	"strings"

	"fjacquet/eod-recon/internal/dateutils"
	"fjacquet/eod-recon/internal/models"
	"fjacquet/eod-recon/internal/textutils"
)

// ReportStore persists EOD reports.
type ReportStore interface {
	InsertReport(ctx context.Context, report *models.Report) error
	UpdateReport(ctx context.Context, report *models.Report) error
	GetReport(ctx context.Context, id string) (*models.Report, error)
	// FindReport returns parsererror.ErrNotFound when no report has the key.
	FindReport(ctx context.Context, key models.ReportKey) (*models.Report, error)
	ListReports(ctx context.Context, filter models.ReportFilter) ([]models.Report, error)
}

// EditLog is the append-only audit trail of report changes.
type EditLog interface {
	AppendEdit(ctx context.Context, event models.EditEvent) error
	ListEdits(ctx context.Context, reportID string) ([]models.EditEvent, error)
}

// NameMappingStore holds reviewer-saved CSR name overrides, keyed by normalized CSV name.
type NameMappingStore interface {
	LoadNameMappings(ctx context.Context) ([]models.NameMapping, error)
	UpsertNameMapping(ctx context.Context, mapping models.NameMapping) error
}

// ProfileDirectory is the read-only agent directory.
type ProfileDirectory interface {
	ListProfiles(ctx context.Context) ([]models.Profile, error)
}

// ProfileSeeder loads directory entries from an external source such as an HR export.
type ProfileSeeder interface {
	SeedProfiles(ctx context.Context, profiles []models.Profile) error
}

// ImportStore persists raw Matrix rows. InsertImportRows writes one chunk and
// returns how many rows were stored.
type ImportStore interface {
	InsertImportRows(ctx context.Context, rows []models.ImportRow) (int, error)
}

// RegionStore loads and saves the office to region map.
type RegionStore interface {
	LoadRegions(ctx context.Context) (map[string]string, error)
	SaveRegions(ctx context.Context, regions map[string]string) error
}

// Store bundles every collaborator. Each backend implements all of them.
type Store interface {
	ReportStore
	EditLog
	NameMappingStore
	ProfileDirectory
	ImportStore
	RegionStore
}

// MappingKey is the upsert key of a name mapping.
func MappingKey(csvName string) string {
	return textutils.NormalizeName(csvName)
}

func matchesFilter(r models.Report, f models.ReportFilter) bool {
	if f.Office != "" && r.Office != f.Office {
		return false
	}
	if f.From == "" && f.To == "" {
		return true
	}
	return dateutils.InRange(r.ReportDate, f.From, f.To)
}

func sortReports(reports []models.Report) {
	sort.Slice(reports, func(i, j int) bool {
		a, b := reports[i], reports[j]
		if a.ReportDate != b.ReportDate {
			return a.ReportDate < b.ReportDate
		}
		if a.Office != b.Office {
			return a.Office < b.Office
		}
		return strings.ToLower(a.AgentEmail) < strings.ToLower(b.AgentEmail)
	})
}

func sortEdits(events []models.EditEvent) {
	sort.SliceStable(events, func(i, j int) bool { return events[i].At.Before(events[j].At) })
}

func copyRegions(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func sortMappings(mappings []models.NameMapping) {
	sort.Slice(mappings, func(i, j int) bool { return MappingKey(mappings[i].CSVName) < MappingKey(mappings[j].CSVName) })
}

// mergeProfiles upserts incoming profiles by case-folded email, keeping the
// result sorted by email.
func mergeProfiles(existing, incoming []models.Profile) []models.Profile {
	byEmail := make(map[string]models.Profile, len(existing)+len(incoming))
	for _, p := range existing {
		byEmail[strings.ToLower(p.Email)] = p
	}
	for _, p := range incoming {
		byEmail[strings.ToLower(p.Email)] = p
	}
	out := make([]models.Profile, 0, len(byEmail))
	for _, p := range byEmail {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return strings.ToLower(out[i].Email) < strings.ToLower(out[j].Email) })
	return out
}
