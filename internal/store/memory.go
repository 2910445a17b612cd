package store

import (
	"context"
	"fmt"
	"sync"

	"fjacquet/eod-recon/internal/models"
	"fjacquet/eod-recon/internal/parsererror"
)

// MemoryStore is an in-memory implementation of Store.
// It is safe for concurrent use and hands out copies only.
// Data is lost on restart.
type MemoryStore struct {
	mu       sync.RWMutex
	reports  map[string]models.Report
	edits    []models.EditEvent
	mappings map[string]models.NameMapping
	profiles []models.Profile
	imports  []models.ImportRow
	regions  map[string]string
}

// NewMemoryStore creates an empty store seeded with the given profiles.
func NewMemoryStore(profiles ...models.Profile) *MemoryStore {
	return &MemoryStore{
		reports:  make(map[string]models.Report),
		mappings: make(map[string]models.NameMapping),
		profiles: append([]models.Profile(nil), profiles...),
		regions:  make(map[string]string),
	}
}

// InsertReport implements ReportStore.
func (s *MemoryStore) InsertReport(ctx context.Context, report *models.Report) error {
	if report.ID == "" {
		return parsererror.Storage("insert report", fmt.Errorf("report ID is required"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.reports[report.ID]; exists {
		return parsererror.Storage("insert report", fmt.Errorf("report %s already exists", report.ID))
	}
	s.reports[report.ID] = report.Clone()
	return nil
}

// UpdateReport implements ReportStore.
func (s *MemoryStore) UpdateReport(ctx context.Context, report *models.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.reports[report.ID]; !exists {
		return parsererror.Storage("update report", fmt.Errorf("report %s: %w", report.ID, parsererror.ErrNotFound))
	}
	s.reports[report.ID] = report.Clone()
	return nil
}

// GetReport implements ReportStore.
func (s *MemoryStore) GetReport(ctx context.Context, id string) (*models.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, exists := s.reports[id]
	if !exists {
		return nil, fmt.Errorf("report %s: %w", id, parsererror.ErrNotFound)
	}
	c := r.Clone()
	return &c, nil
}

// FindReport implements ReportStore.
func (s *MemoryStore) FindReport(ctx context.Context, key models.ReportKey) (*models.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var found *models.Report
	for _, r := range s.reports {
		if r.Key() != key {
			continue
		}
		if found == nil || r.CreatedAt.Before(found.CreatedAt) {
			c := r.Clone()
			found = &c
		}
	}
	if found == nil {
		return nil, parsererror.ErrNotFound
	}
	return found, nil
}

// ListReports implements ReportStore.
func (s *MemoryStore) ListReports(ctx context.Context, filter models.ReportFilter) ([]models.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Report
	for _, r := range s.reports {
		if matchesFilter(r, filter) {
			out = append(out, r.Clone())
		}
	}
	sortReports(out)
	return out, nil
}

// AppendEdit implements EditLog.
func (s *MemoryStore) AppendEdit(ctx context.Context, event models.EditEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.edits = append(s.edits, event)
	return nil
}

// ListEdits implements EditLog.
func (s *MemoryStore) ListEdits(ctx context.Context, reportID string) ([]models.EditEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.EditEvent
	for _, e := range s.edits {
		if e.ReportID == reportID {
			out = append(out, e)
		}
	}
	sortEdits(out)
	return out, nil
}

// LoadNameMappings implements NameMappingStore.
func (s *MemoryStore) LoadNameMappings(ctx context.Context) ([]models.NameMapping, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.NameMapping, 0, len(s.mappings))
	for _, m := range s.mappings {
		out = append(out, m)
	}
	sortMappings(out)
	return out, nil
}

// UpsertNameMapping implements NameMappingStore.
func (s *MemoryStore) UpsertNameMapping(ctx context.Context, mapping models.NameMapping) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mappings[MappingKey(mapping.CSVName)] = mapping
	return nil
}

// ListProfiles implements ProfileDirectory.
func (s *MemoryStore) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Profile(nil), s.profiles...), nil
}

// SetProfiles replaces the directory contents.
func (s *MemoryStore) SetProfiles(profiles []models.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles = append([]models.Profile(nil), profiles...)
}

// SeedProfiles implements ProfileSeeder. Entries are upserted by email.
func (s *MemoryStore) SeedProfiles(ctx context.Context, profiles []models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles = mergeProfiles(s.profiles, profiles)
	return nil
}

// InsertImportRows implements ImportStore.
func (s *MemoryStore) InsertImportRows(ctx context.Context, rows []models.ImportRow) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.imports = append(s.imports, rows...)
	return len(rows), nil
}

// ImportRows returns every stored import row.
func (s *MemoryStore) ImportRows() []models.ImportRow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.ImportRow(nil), s.imports...)
}

// LoadRegions implements RegionStore.
func (s *MemoryStore) LoadRegions(ctx context.Context) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyRegions(s.regions), nil
}

// SaveRegions implements RegionStore.
func (s *MemoryStore) SaveRegions(ctx context.Context, regions map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.regions = copyRegions(regions)
	return nil
}
