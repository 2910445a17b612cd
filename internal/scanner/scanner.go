// Package scanner expands files and directories into the list of Matrix
// exports to read.
package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"fjacquet/eod-recon/internal/logging"
)

// DefaultExtensions are the export file types picked up inside directories.
var DefaultExtensions = []string{".csv", ".tsv", ".txt"}

// ExportScanner finds export files.
type ExportScanner struct {
	extensions map[string]bool
	logger     logging.Logger
}

// NewExportScanner creates a scanner for the given extensions, or
// DefaultExtensions when none are given.
func NewExportScanner(logger logging.Logger, extensions ...string) *ExportScanner {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	ext := make(map[string]bool, len(extensions))
	for _, e := range extensions {
		ext[strings.ToLower(e)] = true
	}
	return &ExportScanner{extensions: ext, logger: logging.Component(logger, "scanner")}
}

// ScanPaths returns the files named in paths plus every matching file below
// the directories in paths. Files named explicitly are kept whatever their
// extension. The result is sorted and free of duplicates.
func (s *ExportScanner) ScanPaths(paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}

	for _, p := range paths {
		absPath, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path for %s: %w", p, err)
		}

		info, err := os.Stat(absPath)
		if err != nil {
			s.logger.WithError(err).WithField(logging.FieldInputFile, absPath).Error("Failed to stat path")
			return nil, fmt.Errorf("failed to stat path %s: %w", absPath, err)
		}

		if !info.IsDir() {
			add(absPath)
			continue
		}

		err = filepath.WalkDir(absPath, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				s.logger.WithError(err).WithField(logging.FieldInputFile, path).Warn("Error walking path")
				return nil
			}
			if !d.IsDir() && s.extensions[strings.ToLower(filepath.Ext(path))] {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk directory %s: %w", absPath, err)
		}
	}

	sort.Strings(files)
	s.logger.Debug("Scanned export paths", logging.F(logging.FieldCount, len(files)))
	return files, nil
}
