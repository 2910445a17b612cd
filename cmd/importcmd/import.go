// Package importcmd stores the rows of Matrix exports.
package importcmd

import (
	"context"
	"fmt"
	"io"

	"fjacquet/eod-recon/cmd/common"
	"fjacquet/eod-recon/cmd/root"
	"fjacquet/eod-recon/internal/container"
	"fjacquet/eod-recon/internal/logging"
	"fjacquet/eod-recon/internal/scanner"

	"github.com/spf13/cobra"
)

// Cmd represents the import command
var Cmd = &cobra.Command{
	Use:   "import [files...]",
	Short: "Import Matrix exports into the store",
	Long: `Import one or more Matrix exports. Directories are searched for .csv, .tsv
and .txt files. Rows are tagged with an import id and a
batch id and written in chunks; a failed chunk is reported and the others are
kept.

Example:
  eod-recon import monday.csv tuesday.tsv`,
	Run: func(cmd *cobra.Command, args []string) {
		if root.SharedFlags.Input != "" {
			args = append(args, root.SharedFlags.Input)
		}
		format := root.SharedFlags.Format
		common.Process(cmd, "Import", func(ctx context.Context, c *container.Container, w io.Writer) error {
			return Run(ctx, c, args, format, w)
		})
	},
}

// Run imports files and writes the import result.
func Run(ctx context.Context, c *container.Container, files []string, format string, w io.Writer) error {
	if len(files) == 0 {
		return fmt.Errorf("no input files given")
	}
	files, err := scanner.NewExportScanner(c.GetLogger()).ScanPaths(files)
	if err != nil {
		return err
	}
	result, _, err := c.GetService().ImportFiles(ctx, files)
	if err != nil {
		return err
	}
	if result.Failed > 0 {
		c.GetLogger().Warn("Some rows were not imported",
			logging.F("failed", result.Failed),
			logging.F(logging.FieldBatchID, result.BatchID))
	}
	return c.GetReportGenerator().ImportResult(w, result, format)
}
