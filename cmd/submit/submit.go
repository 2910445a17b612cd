// Package submit stores an agent's EOD report read from a JSON file.
package submit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"fjacquet/eod-recon/cmd/common"
	"fjacquet/eod-recon/cmd/root"
	"fjacquet/eod-recon/internal/container"
	"fjacquet/eod-recon/internal/models"
	"fjacquet/eod-recon/internal/service"
	"fjacquet/eod-recon/internal/validation"

	"github.com/spf13/cobra"
)

var updateID string

// Cmd represents the submit command
var Cmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit an EOD report from a JSON file",
	Long: `Submit an agent's end-of-day report. The JSON file carries the agent, office,
report date, transactions, expenses, referrals, A/R correction receipts and the
cash counted in the drawer.

A second report for the same agent, office and day is rejected; pass --update
with the existing report id to replace it instead.

Example:
  eod-recon submit -i eod-2025-03-14.json`,
	Run: func(cmd *cobra.Command, args []string) {
		input := root.SharedFlags.Input
		if input == "" && len(args) > 0 {
			input = args[0]
		}
		format := root.SharedFlags.Format
		common.Process(cmd, "Submit", func(ctx context.Context, c *container.Container, w io.Writer) error {
			return Run(ctx, c, input, updateID, format, w)
		})
	},
}

func init() {
	Cmd.Flags().StringVar(&updateID, "update", "", "Replace the report with this id")
}

// Run reads the request at input, stores it and writes the stored report.
func Run(ctx context.Context, c *container.Container, input, id, format string, w io.Writer) error {
	if err := validation.IsReadableFile(input); err != nil {
		return err
	}
	data, err := os.ReadFile(input) // #nosec G304 -- path chosen by the operator
	if err != nil {
		return fmt.Errorf("error reading %s: %w", input, err)
	}

	var req service.SubmitRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("error decoding %s: %w", input, err)
	}

	var report *models.Report
	if id != "" {
		report, err = c.GetService().UpdateReport(ctx, id, req)
	} else {
		report, err = c.GetService().SubmitReport(ctx, req)
	}
	if err != nil {
		return err
	}
	return c.GetReportGenerator().Reports(w, []models.Report{*report}, format)
}
