package store

import (
	"context"
	"sync"

	"fjacquet/eod-recon/internal/models"
)

// MockStore is a MemoryStore with error injection and write counters for testing.
type MockStore struct {
	*MemoryStore

	mu sync.Mutex

	// Error flags for testing error conditions
	InsertReportError error
	UpdateReportError error
	FindReportError   error
	ListReportsError  error
	AppendEditError   error
	LoadMappingsError error
	UpsertMappingErr  error
	ListProfilesError error
	SaveRegionsError  error
	LoadRegionsError  error

	// ImportChunkErrors fails the n-th call (0-based) to InsertImportRows.
	ImportChunkErrors map[int]error

	InsertReportCalls int
	UpdateReportCalls int
	ImportCalls       int
	ListProfilesCalls int
}

// NewMockStore creates a MockStore seeded with the given profiles.
func NewMockStore(profiles ...models.Profile) *MockStore {
	return &MockStore{MemoryStore: NewMemoryStore(profiles...)}
}

// InsertReport records the call and fails when InsertReportError is set.
func (m *MockStore) InsertReport(ctx context.Context, report *models.Report) error {
	m.mu.Lock()
	m.InsertReportCalls++
	m.mu.Unlock()
	if m.InsertReportError != nil {
		return m.InsertReportError
	}
	return m.MemoryStore.InsertReport(ctx, report)
}

// UpdateReport records the call and fails when UpdateReportError is set.
func (m *MockStore) UpdateReport(ctx context.Context, report *models.Report) error {
	m.mu.Lock()
	m.UpdateReportCalls++
	m.mu.Unlock()
	if m.UpdateReportError != nil {
		return m.UpdateReportError
	}
	return m.MemoryStore.UpdateReport(ctx, report)
}

// FindReport fails when FindReportError is set.
func (m *MockStore) FindReport(ctx context.Context, key models.ReportKey) (*models.Report, error) {
	if m.FindReportError != nil {
		return nil, m.FindReportError
	}
	return m.MemoryStore.FindReport(ctx, key)
}

// ListReports fails when ListReportsError is set.
func (m *MockStore) ListReports(ctx context.Context, filter models.ReportFilter) ([]models.Report, error) {
	if m.ListReportsError != nil {
		return nil, m.ListReportsError
	}
	return m.MemoryStore.ListReports(ctx, filter)
}

// AppendEdit fails when AppendEditError is set.
func (m *MockStore) AppendEdit(ctx context.Context, event models.EditEvent) error {
	if m.AppendEditError != nil {
		return m.AppendEditError
	}
	return m.MemoryStore.AppendEdit(ctx, event)
}

// LoadNameMappings fails when LoadMappingsError is set.
func (m *MockStore) LoadNameMappings(ctx context.Context) ([]models.NameMapping, error) {
	if m.LoadMappingsError != nil {
		return nil, m.LoadMappingsError
	}
	return m.MemoryStore.LoadNameMappings(ctx)
}

// UpsertNameMapping fails when UpsertMappingErr is set.
func (m *MockStore) UpsertNameMapping(ctx context.Context, mapping models.NameMapping) error {
	if m.UpsertMappingErr != nil {
		return m.UpsertMappingErr
	}
	return m.MemoryStore.UpsertNameMapping(ctx, mapping)
}

// ListProfiles records the call and fails when ListProfilesError is set.
func (m *MockStore) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	m.mu.Lock()
	m.ListProfilesCalls++
	m.mu.Unlock()
	if m.ListProfilesError != nil {
		return nil, m.ListProfilesError
	}
	return m.MemoryStore.ListProfiles(ctx)
}

// InsertImportRows fails the calls listed in ImportChunkErrors.
func (m *MockStore) InsertImportRows(ctx context.Context, rows []models.ImportRow) (int, error) {
	m.mu.Lock()
	call := m.ImportCalls
	m.ImportCalls++
	m.mu.Unlock()
	if err, ok := m.ImportChunkErrors[call]; ok {
		return 0, err
	}
	return m.MemoryStore.InsertImportRows(ctx, rows)
}

// LoadRegions fails when LoadRegionsError is set.
func (m *MockStore) LoadRegions(ctx context.Context) (map[string]string, error) {
	if m.LoadRegionsError != nil {
		return nil, m.LoadRegionsError
	}
	return m.MemoryStore.LoadRegions(ctx)
}

// SaveRegions fails when SaveRegionsError is set.
func (m *MockStore) SaveRegions(ctx context.Context, regions map[string]string) error {
	if m.SaveRegionsError != nil {
		return m.SaveRegionsError
	}
	return m.MemoryStore.SaveRegions(ctx, regions)
}
