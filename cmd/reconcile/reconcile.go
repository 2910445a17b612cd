// Package reconcile compares Matrix exports against the stored EOD reports.
package reconcile

import (
	"context"
	"fmt"
	"io"

	"fjacquet/eod-recon/cmd/common"
	"fjacquet/eod-recon/cmd/root"
	"fjacquet/eod-recon/internal/container"
	"fjacquet/eod-recon/internal/logging"
	"fjacquet/eod-recon/internal/scanner"
	"fjacquet/eod-recon/internal/validation"

	"github.com/spf13/cobra"
)

var showAll bool

// Cmd represents the reconcile command
var Cmd = &cobra.Command{
	Use:   "reconcile [files...]",
	Short: "Reconcile Matrix exports against submitted EOD reports",
	Long: `Group the rows of Matrix exports by day, office and CSR, resolve each CSR to an
agent and flag the groups with no EOD report, unmapped names or receipts
missing from the report.

Only flagged groups are printed unless --all is set.

Example:
  eod-recon reconcile march.csv --from 2025-03-01 --to 2025-03-31 -f csv -o flagged.csv`,
	Run: func(cmd *cobra.Command, args []string) {
		if root.SharedFlags.Input != "" {
			args = append(args, root.SharedFlags.Input)
		}
		opts := Options{
			Files:  args,
			From:   root.SharedFlags.From,
			To:     root.SharedFlags.To,
			All:    showAll,
			Format: root.SharedFlags.Format,
		}
		common.Process(cmd, "Reconcile", func(ctx context.Context, c *container.Container, w io.Writer) error {
			return Run(ctx, c, opts, w)
		})
	},
}

func init() {
	Cmd.Flags().BoolVar(&showAll, "all", false, "Print every group, not only flagged ones")
}

// Options are the inputs of a reconcile run.
type Options struct {
	Files  []string
	From   string
	To     string
	All    bool
	Format string
}

// Run reconciles the files and writes the groups.
func Run(ctx context.Context, c *container.Container, opts Options, w io.Writer) error {
	if len(opts.Files) == 0 {
		return fmt.Errorf("no input files given")
	}
	if err := validation.DateRange(opts.From, opts.To); err != nil {
		return err
	}

	files, err := scanner.NewExportScanner(c.GetLogger()).ScanPaths(opts.Files)
	if err != nil {
		return err
	}
	result, err := c.GetService().ReconcileFiles(ctx, files, opts.From, opts.To)
	if err != nil {
		return err
	}
	c.GetLogger().Info("Reconciliation finished",
		logging.F("groups", len(result.Groups)),
		logging.F("flagged", len(result.Flagged)),
		logging.F("reports_with_missing_receipts", len(result.MissingReceipts)))

	return c.GetReportGenerator().Reconciliation(w, result, opts.All, opts.Format)
}
