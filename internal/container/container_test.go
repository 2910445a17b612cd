package container

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"fjacquet/eod-recon/internal/config"
	"fjacquet/eod-recon/internal/logging"
	"fjacquet/eod-recon/internal/service"
	"fjacquet/eod-recon/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseConfig(backend string) *config.Config {
	cfg := &config.Config{}
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	cfg.CSV.Delimiter = ","
	cfg.Store.Backend = backend
	cfg.Import.ChunkSize = 100
	cfg.Server.MaxUploadSizeMB = 1
	return cfg
}

func TestNewContainer(t *testing.T) {
	tests := []struct {
		name        string
		config      func(t *testing.T) *config.Config
		expectError bool
		errorMsg    string
		wantType    interface{}
	}{
		{
			name:        "nil config",
			config:      func(t *testing.T) *config.Config { return nil },
			expectError: true,
			errorMsg:    "configuration cannot be nil",
		},
		{
			name:     "memory backend",
			config:   func(t *testing.T) *config.Config { return baseConfig(config.BackendMemory) },
			wantType: &store.MemoryStore{},
		},
		{
			name: "file backend",
			config: func(t *testing.T) *config.Config {
				cfg := baseConfig(config.BackendFile)
				cfg.Store.DataDir = t.TempDir()
				return cfg
			},
			wantType: &store.FileStore{},
		},
		{
			name: "profile cache enabled",
			config: func(t *testing.T) *config.Config {
				cfg := baseConfig(config.BackendMemory)
				cfg.Cache.ProfileTTLSeconds = 60
				return cfg
			},
			wantType: &store.MemoryStore{},
		},
		{
			name:        "unknown backend",
			config:      func(t *testing.T) *config.Config { return baseConfig("mongo") },
			expectError: true,
			errorMsg:    "unknown store backend",
		},
		{
			name: "receipts enabled without bucket",
			config: func(t *testing.T) *config.Config {
				cfg := baseConfig(config.BackendMemory)
				cfg.Receipts.Enabled = true
				return cfg
			},
			expectError: true,
			errorMsg:    "receipt uploader",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewContainerWithLogger(context.Background(), tt.config(t), logging.NewMockLogger())
			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
				assert.Nil(t, c)
				return
			}
			require.NoError(t, err)
			defer func() { assert.NoError(t, c.Close()) }()

			assert.IsType(t, tt.wantType, c.GetStore())
			assert.NotNil(t, c.GetService())
			assert.NotNil(t, c.GetReportGenerator())
			assert.NotNil(t, c.GetMetrics())
			assert.NotNil(t, c.GetLogger())
			assert.NotNil(t, c.GetConfig())
		})
	}
}

func TestNewContainer_NilConfig(t *testing.T) {
	c, err := NewContainer(context.Background(), nil)
	assert.Nil(t, c)
	assert.EqualError(t, err, "configuration cannot be nil")
}

func TestContainer_FileBackendPersistsSubmissions(t *testing.T) {
	dir := t.TempDir()
	cfg := baseConfig(config.BackendFile)
	cfg.Store.DataDir = dir

	c, err := NewContainerWithLogger(context.Background(), cfg, logging.NewMockLogger())
	require.NoError(t, err)

	_, err = c.GetService().SubmitReport(context.Background(), service.SubmitRequest{
		AgentEmail:      "maria@agency.com",
		Office:          "CA010",
		ReportDate:      "2025-03-14",
		TotalCashInHand: decimal.Zero,
	})
	require.NoError(t, err)
	require.NoError(t, c.Close())

	_, err = os.Stat(filepath.Join(dir, "reports.yaml"))
	assert.NoError(t, err)
}

func TestContainer_APIServerIsWired(t *testing.T) {
	c, err := NewContainerWithLogger(context.Background(), baseConfig(config.BackendMemory), logging.NewMockLogger())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	c.NewAPIServer().Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	c.NewAPIServer().Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
