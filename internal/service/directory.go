package service

import (
	"context"
	"fmt"
	"strings"

	"fjacquet/eod-recon/internal/logging"
	"fjacquet/eod-recon/internal/models"
	"fjacquet/eod-recon/internal/parsererror"
	"fjacquet/eod-recon/internal/rollup"
	"fjacquet/eod-recon/internal/store"
	"fjacquet/eod-recon/internal/textutils"
	"fjacquet/eod-recon/internal/validation"
)

// SaveNameMapping links a Matrix CSR name to an agent email, replacing any
// previous mapping for the same normalized name.
func (s *Service) SaveNameMapping(ctx context.Context, req NameMappingRequest) (models.NameMapping, error) {
	if textutils.NormalizeName(req.CSVName) == "" {
		return models.NameMapping{}, &parsererror.ValidationError{Field: "csv_name", Reason: "is required"}
	}
	if err := validation.AgentEmail(req.AgentEmail); err != nil {
		return models.NameMapping{}, err
	}

	mapping := models.NameMapping{
		CSVName:    strings.TrimSpace(req.CSVName),
		AgentEmail: strings.ToLower(strings.TrimSpace(req.AgentEmail)),
		UpdatedAt:  s.now(),
	}
	if err := s.store.UpsertNameMapping(ctx, mapping); err != nil {
		return models.NameMapping{}, parsererror.Storage("upsert name mapping", err)
	}

	s.logger.Info("Name mapping saved",
		logging.F(logging.FieldCSRName, mapping.CSVName),
		logging.F(logging.FieldAgent, mapping.AgentEmail))
	return mapping, nil
}

// ListNameMappings returns every saved mapping.
func (s *Service) ListNameMappings(ctx context.Context) ([]models.NameMapping, error) {
	mappings, err := s.store.LoadNameMappings(ctx)
	if err != nil {
		return nil, parsererror.Storage("load name mappings", err)
	}
	return mappings, nil
}

// SeedProfiles loads agent directory entries when the store accepts them and
// drops any cached copy of the directory.
func (s *Service) SeedProfiles(ctx context.Context, profiles []models.Profile) error {
	seeder, ok := s.store.(store.ProfileSeeder)
	if !ok {
		return fmt.Errorf("store does not accept profile imports")
	}
	for i, p := range profiles {
		if err := validation.AgentEmail(p.Email); err != nil {
			return fmt.Errorf("profile %d: %w", i+1, err)
		}
		profiles[i].Email = strings.ToLower(strings.TrimSpace(p.Email))
		profiles[i].FullName = strings.TrimSpace(p.FullName)
	}
	if err := seeder.SeedProfiles(ctx, profiles); err != nil {
		return parsererror.Storage("seed profiles", err)
	}
	if c, ok := s.directory.(interface{ Invalidate() }); ok {
		c.Invalidate()
	}
	s.logger.Info("Agent directory updated", logging.F(logging.FieldCount, len(profiles)))
	return nil
}

// LoadRegions returns the office to region map.
func (s *Service) LoadRegions(ctx context.Context) (map[string]string, error) {
	regions, err := s.store.LoadRegions(ctx)
	if err != nil {
		return nil, parsererror.Storage("load regions", err)
	}
	return regions, nil
}

// SaveRegions replaces the office to region map. Office keys are normalized
// to canonical codes and blank regions are dropped.
func (s *Service) SaveRegions(ctx context.Context, regions map[string]string) (map[string]string, error) {
	normalized := rollup.New(regions).Regions()
	if err := s.store.SaveRegions(ctx, normalized); err != nil {
		return nil, parsererror.Storage("save regions", err)
	}
	s.logger.Info("Region map saved", logging.F(logging.FieldCount, len(normalized)))
	return normalized, nil
}

// Rollup groups the stored reports matching filter by office-day and region.
func (s *Service) Rollup(ctx context.Context, filter models.ReportFilter) (rollup.Result, error) {
	regions, err := s.LoadRegions(ctx)
	if err != nil {
		return rollup.Result{}, err
	}
	reports, err := s.ListReports(ctx, filter)
	if err != nil {
		return rollup.Result{}, err
	}
	return rollup.New(regions).Build(reports), nil
}
