// Package common contains shared functionality for command handlers
package common

import (
	"context"
	"io"

	"fjacquet/eod-recon/cmd/root"
	"fjacquet/eod-recon/internal/config"
	"fjacquet/eod-recon/internal/container"
	"fjacquet/eod-recon/internal/logging"

	"github.com/spf13/cobra"
)

// Action is the body of a subcommand.
type Action func(ctx context.Context, c *container.Container, w io.Writer) error

// Process runs action with the command's container and output writer. A
// failure is fatal.
func Process(cmd *cobra.Command, name string, action Action) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	c := root.GetContainer()
	log := root.GetLogger()
	if c == nil {
		log.Fatal("Application container is not initialized")
		return
	}

	err := root.WithOutput(func(w io.Writer) error {
		return action(ctx, c, w)
	})
	if err != nil {
		log.Fatalf("%s failed: %v", name, err)
	}
}

// NewMemoryContainer wires the application over an in-memory store with
// default settings.
func NewMemoryContainer(ctx context.Context, logger logging.Logger) (*container.Container, error) {
	cfg := &config.Config{}
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	cfg.CSV.Delimiter = ","
	cfg.Store.Backend = config.BackendMemory
	cfg.Import.ChunkSize = 500
	cfg.Server.MaxUploadSizeMB = 20
	return container.NewContainerWithLogger(ctx, cfg, logger)
}
