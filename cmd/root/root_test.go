package root_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"fjacquet/eod-recon/cmd/root"
	"fjacquet/eod-recon/internal/config"
	"fjacquet/eod-recon/internal/container"
	"fjacquet/eod-recon/internal/logging"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	root.Init()
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "eod-recon", root.Cmd.Use)
	assert.Contains(t, root.Cmd.Short, "end-of-day reports")
	assert.NotNil(t, root.Cmd.Run)
	assert.NotNil(t, root.Cmd.PersistentPreRunE)
	assert.NotNil(t, root.Cmd.PersistentPostRun)
}

func TestRootCommand_Flags(t *testing.T) {
	tests := []struct {
		name      string
		shorthand string
		def       string
	}{
		{"input", "i", ""},
		{"output", "o", ""},
		{"format", "f", "table"},
		{"store", "", ""},
		{"data-dir", "", ""},
		{"from", "", ""},
		{"to", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag := root.Cmd.PersistentFlags().Lookup(tt.name)
			require.NotNil(t, flag)
			assert.Equal(t, tt.shorthand, flag.Shorthand)
			assert.Equal(t, tt.def, flag.DefValue)
		})
	}
}

func TestRootCommand_Run(t *testing.T) {
	assert.NotPanics(t, func() {
		root.Cmd.Run(&cobra.Command{}, []string{})
	})
}

func TestSetContainer(t *testing.T) {
	cfg := &config.Config{}
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	cfg.CSV.Delimiter = ","
	cfg.Store.Backend = config.BackendMemory
	cfg.Import.ChunkSize = 10

	c, err := container.NewContainerWithLogger(context.Background(), cfg, logging.NewMockLogger())
	require.NoError(t, err)

	root.SetContainer(c)
	defer root.SetContainer(nil)

	assert.Same(t, c, root.GetContainer())
	assert.Same(t, cfg, root.GetConfig())
	assert.NotNil(t, root.GetLogger())
}

func TestOpenOutput(t *testing.T) {
	original := root.SharedFlags.Output
	defer func() { root.SharedFlags.Output = original }()

	root.SharedFlags.Output = ""
	w, err := root.OpenOutput()
	require.NoError(t, err)
	assert.NoError(t, w.Close())

	path := filepath.Join(t.TempDir(), "nested", "out.csv")
	root.SharedFlags.Output = path
	w, err = root.OpenOutput()
	require.NoError(t, err)
	_, err = w.Write([]byte("x"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))
}
