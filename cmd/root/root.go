// Package root contains the root command for the application
package root

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"fjacquet/eod-recon/internal/config"
	"fjacquet/eod-recon/internal/container"
	"fjacquet/eod-recon/internal/logging"
	"fjacquet/eod-recon/internal/models"
	"fjacquet/eod-recon/internal/validation"

	"github.com/spf13/cobra"
)

// CommonFlags represents the flags that are common to multiple commands
type CommonFlags struct {
	Input   string
	Output  string
	Format  string
	Backend string
	DataDir string
	From    string
	To      string
}

var (
	// Log is the shared logger instance for commands
	Log logging.Logger = logging.NewLogrusAdapter("info", "text")

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "eod-recon",
		Short: "A CLI tool to compute and reconcile insurance agency end-of-day reports.",
		Long: `eod-recon computes the end-of-day deposit split for an agency office,
stores the agents' EOD reports and reconciles them against Matrix exports.`,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to eod-recon!")
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(cmd.Context())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if appContainer != nil {
				if err := appContainer.Close(); err != nil {
					Log.WithError(err).Warn("Failed to close container")
				}
				appContainer = nil
			}
		},
	}

	// SharedFlags holds the values of the persistent flags.
	SharedFlags = CommonFlags{}

	appConfig    *config.Config
	appContainer *container.Container
)

// Init initializes the root command and all flags
func Init() {
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Input, "input", "i", "", "Input file")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Output, "output", "o", "", "Output file (default stdout)")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Format, "format", "f", validation.FormatTable, "Output format: table, csv or json")
	Cmd.PersistentFlags().StringVar(&SharedFlags.Backend, "store", "", "Store backend override: memory, file or postgres")
	Cmd.PersistentFlags().StringVar(&SharedFlags.DataDir, "data-dir", "", "Directory of the file store")
	Cmd.PersistentFlags().StringVar(&SharedFlags.From, "from", "", "First report date (YYYY-MM-DD)")
	Cmd.PersistentFlags().StringVar(&SharedFlags.To, "to", "", "Last report date (YYYY-MM-DD)")
}

func setup(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := validation.IsValidOutputFormat(SharedFlags.Format); err != nil {
		return err
	}

	config.LoadEnv()
	cfg, err := config.InitializeConfig()
	if err != nil {
		return err
	}
	if SharedFlags.Backend != "" {
		cfg.Store.Backend = SharedFlags.Backend
	}
	if SharedFlags.DataDir != "" {
		cfg.Store.DataDir = SharedFlags.DataDir
	}

	Log = config.ConfigureLoggingFromConfig(cfg)
	c, err := container.NewContainerWithLogger(ctx, cfg, Log)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}

	appConfig = cfg
	appContainer = c
	return nil
}

// GetContainer returns the container built for the running command. It is
// nil before the persistent pre-run hook has executed.
func GetContainer() *container.Container {
	return appContainer
}

// SetContainer replaces the container, for tests driving subcommands directly.
func SetContainer(c *container.Container) {
	appContainer = c
	if c != nil {
		appConfig = c.GetConfig()
		Log = c.GetLogger()
	}
}

// GetConfig returns the loaded configuration.
func GetConfig() *config.Config {
	return appConfig
}

// GetLogger returns the configured logger.
func GetLogger() logging.Logger {
	return Log
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// OpenOutput returns the writer selected by --output, creating parent
// directories as needed. Stdout is used when no output is set.
func OpenOutput() (io.WriteCloser, error) {
	if SharedFlags.Output == "" {
		return nopCloser{os.Stdout}, nil
	}
	if err := os.MkdirAll(filepath.Dir(SharedFlags.Output), models.PermissionDirectory); err != nil {
		return nil, fmt.Errorf("error creating output directory: %w", err)
	}
	f, err := os.Create(SharedFlags.Output) // #nosec G304 -- path chosen by the operator
	if err != nil {
		return nil, fmt.Errorf("error creating output file: %w", err)
	}
	return f, nil
}

// WithOutput runs fn against the selected output and closes it afterwards.
func WithOutput(fn func(w io.Writer) error) error {
	w, err := OpenOutput()
	if err != nil {
		return err
	}
	runErr := fn(w)
	if err := w.Close(); err != nil && runErr == nil {
		runErr = fmt.Errorf("error closing output: %w", err)
	}
	return runErr
}
