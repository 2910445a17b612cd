// Package rollup prints region totals of the stored reports.
package rollup

import (
	"context"
	"io"

	"fjacquet/eod-recon/cmd/common"
	"fjacquet/eod-recon/cmd/root"
	"fjacquet/eod-recon/internal/container"
	"fjacquet/eod-recon/internal/models"

	"github.com/spf13/cobra"
)

var office string

// Cmd represents the rollup command
var Cmd = &cobra.Command{
	Use:   "rollup",
	Short: "Total stored reports by region",
	Long: `Group the stored EOD reports by office-day and by region, using the region map
saved with "eod-recon regions import". Offices missing from the map are
totalled under "Unassigned".

Example:
  eod-recon rollup --from 2025-03-01 --to 2025-03-31 -f csv`,
	Run: func(cmd *cobra.Command, args []string) {
		filter := models.ReportFilter{From: root.SharedFlags.From, To: root.SharedFlags.To, Office: office}
		format := root.SharedFlags.Format
		common.Process(cmd, "Rollup", func(ctx context.Context, c *container.Container, w io.Writer) error {
			return Run(ctx, c, filter, format, w)
		})
	},
}

func init() {
	Cmd.Flags().StringVar(&office, "office", "", "Restrict to one office")
}

// Run builds the rollup and writes it.
func Run(ctx context.Context, c *container.Container, filter models.ReportFilter, format string, w io.Writer) error {
	result, err := c.GetService().Rollup(ctx, filter)
	if err != nil {
		return err
	}
	return c.GetReportGenerator().Rollup(w, result, format)
}
