package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"fjacquet/eod-recon/internal/logging"
	"fjacquet/eod-recon/internal/models"
	"fjacquet/eod-recon/internal/parsererror"

	"gopkg.in/yaml.v3"
)

// File names inside the data directory
const (
	ReportsFile      = "reports.yaml"
	EditsFile        = "edits.yaml"
	NameMappingsFile = "name_mappings.yaml"
	ProfilesFile     = "profiles.yaml"
	RegionsFile      = "regions.yaml"
	ImportsFile      = "imports.yaml"
)

// FileStore keeps every collection in its own YAML file under a data
// directory. Each operation reads, modifies and rewrites the whole file.
type FileStore struct {
	mu     sync.Mutex
	dir    string
	logger logging.Logger
}

// NewFileStore creates a store rooted at dir. The directory is created on first write.
func NewFileStore(dir string, logger logging.Logger) *FileStore {
	if dir == "" {
		dir = "database"
	}
	return &FileStore{dir: dir, logger: logging.Component(logger, "file_store")}
}

// Dir returns the data directory.
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.dir, name)
}

// load reads a YAML file into out. A missing file leaves out untouched.
func (s *FileStore) load(name string, out interface{}) error {
	filePath := s.path(name)
	data, err := os.ReadFile(filePath) // #nosec G304 -- fixed names under the data dir
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Debug("Data file not found, starting empty", logging.F("file", filePath))
			return nil
		}
		return fmt.Errorf("error reading %s: %w", filePath, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("error parsing %s: %w", filePath, err)
	}
	return nil
}

func (s *FileStore) save(name string, v interface{}) error {
	if err := os.MkdirAll(s.dir, models.PermissionDirectory); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("error marshaling %s: %w", name, err)
	}
	if err := os.WriteFile(s.path(name), data, models.PermissionConfigFile); err != nil {
		return fmt.Errorf("error writing %s: %w", name, err)
	}
	return nil
}

func (s *FileStore) loadReports() ([]models.Report, error) {
	var reports []models.Report
	if err := s.load(ReportsFile, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

// InsertReport implements ReportStore.
func (s *FileStore) InsertReport(ctx context.Context, report *models.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reports, err := s.loadReports()
	if err != nil {
		return parsererror.Storage("insert report", err)
	}
	for _, r := range reports {
		if r.ID == report.ID {
			return parsererror.Storage("insert report", fmt.Errorf("report %s already exists", report.ID))
		}
	}
	reports = append(reports, report.Clone())
	return parsererror.Storage("insert report", s.save(ReportsFile, reports))
}

// UpdateReport implements ReportStore.
func (s *FileStore) UpdateReport(ctx context.Context, report *models.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reports, err := s.loadReports()
	if err != nil {
		return parsererror.Storage("update report", err)
	}
	for i := range reports {
		if reports[i].ID == report.ID {
			reports[i] = report.Clone()
			return parsererror.Storage("update report", s.save(ReportsFile, reports))
		}
	}
	return parsererror.Storage("update report", fmt.Errorf("report %s: %w", report.ID, parsererror.ErrNotFound))
}

// GetReport implements ReportStore.
func (s *FileStore) GetReport(ctx context.Context, id string) (*models.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reports, err := s.loadReports()
	if err != nil {
		return nil, parsererror.Storage("get report", err)
	}
	for _, r := range reports {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, fmt.Errorf("report %s: %w", id, parsererror.ErrNotFound)
}

// FindReport implements ReportStore.
func (s *FileStore) FindReport(ctx context.Context, key models.ReportKey) (*models.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reports, err := s.loadReports()
	if err != nil {
		return nil, parsererror.Storage("find report", err)
	}
	for _, r := range reports {
		if r.Key() == key {
			return &r, nil
		}
	}
	return nil, parsererror.ErrNotFound
}

// ListReports implements ReportStore.
func (s *FileStore) ListReports(ctx context.Context, filter models.ReportFilter) ([]models.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reports, err := s.loadReports()
	if err != nil {
		return nil, parsererror.Storage("list reports", err)
	}
	var out []models.Report
	for _, r := range reports {
		if matchesFilter(r, filter) {
			out = append(out, r)
		}
	}
	sortReports(out)
	return out, nil
}

// AppendEdit implements EditLog.
func (s *FileStore) AppendEdit(ctx context.Context, event models.EditEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var events []models.EditEvent
	if err := s.load(EditsFile, &events); err != nil {
		return parsererror.Storage("append edit", err)
	}
	events = append(events, event)
	return parsererror.Storage("append edit", s.save(EditsFile, events))
}

// ListEdits implements EditLog.
func (s *FileStore) ListEdits(ctx context.Context, reportID string) ([]models.EditEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var events []models.EditEvent
	if err := s.load(EditsFile, &events); err != nil {
		return nil, parsererror.Storage("list edits", err)
	}
	var out []models.EditEvent
	for _, e := range events {
		if e.ReportID == reportID {
			out = append(out, e)
		}
	}
	sortEdits(out)
	return out, nil
}

// LoadNameMappings implements NameMappingStore.
func (s *FileStore) LoadNameMappings(ctx context.Context) ([]models.NameMapping, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var mappings []models.NameMapping
	if err := s.load(NameMappingsFile, &mappings); err != nil {
		return nil, parsererror.Storage("load name mappings", err)
	}
	sortMappings(mappings)
	return mappings, nil
}

// UpsertNameMapping implements NameMappingStore.
func (s *FileStore) UpsertNameMapping(ctx context.Context, mapping models.NameMapping) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var mappings []models.NameMapping
	if err := s.load(NameMappingsFile, &mappings); err != nil {
		return parsererror.Storage("upsert name mapping", err)
	}

	key := MappingKey(mapping.CSVName)
	replaced := false
	for i := range mappings {
		if MappingKey(mappings[i].CSVName) == key {
			mappings[i] = mapping
			replaced = true
			break
		}
	}
	if !replaced {
		mappings = append(mappings, mapping)
	}
	sortMappings(mappings)

	s.logger.WithFields(
		logging.F(logging.FieldCSRName, mapping.CSVName),
		logging.F(logging.FieldAgent, mapping.AgentEmail),
	).Debug("Saved name mapping")
	return parsererror.Storage("upsert name mapping", s.save(NameMappingsFile, mappings))
}

// ListProfiles implements ProfileDirectory.
func (s *FileStore) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var profiles []models.Profile
	if err := s.load(ProfilesFile, &profiles); err != nil {
		return nil, parsererror.Storage("list profiles", err)
	}
	return profiles, nil
}

// SeedProfiles implements ProfileSeeder.
func (s *FileStore) SeedProfiles(ctx context.Context, profiles []models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var existing []models.Profile
	if err := s.load(ProfilesFile, &existing); err != nil {
		return parsererror.Storage("seed profiles", err)
	}
	return parsererror.Storage("seed profiles", s.save(ProfilesFile, mergeProfiles(existing, profiles)))
}

// InsertImportRows implements ImportStore.
func (s *FileStore) InsertImportRows(ctx context.Context, rows []models.ImportRow) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stored []models.ImportRow
	if err := s.load(ImportsFile, &stored); err != nil {
		return 0, parsererror.Storage("insert import rows", err)
	}
	stored = append(stored, rows...)
	if err := s.save(ImportsFile, stored); err != nil {
		return 0, parsererror.Storage("insert import rows", err)
	}
	return len(rows), nil
}

// LoadRegions implements RegionStore.
func (s *FileStore) LoadRegions(ctx context.Context) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	regions := make(map[string]string)
	if err := s.load(RegionsFile, &regions); err != nil {
		return nil, parsererror.Storage("load regions", err)
	}
	return regions, nil
}

// SaveRegions implements RegionStore.
func (s *FileStore) SaveRegions(ctx context.Context, regions map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return parsererror.Storage("save regions", s.save(RegionsFile, copyRegions(regions)))
}
