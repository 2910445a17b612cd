// Package summarize computes the EOD summary of a Matrix export without
// storing anything.
package summarize

import (
	"context"
	"fmt"
	"io"

	"fjacquet/eod-recon/cmd/common"
	"fjacquet/eod-recon/cmd/root"
	"fjacquet/eod-recon/internal/container"
	"fjacquet/eod-recon/internal/currencyutils"
	"fjacquet/eod-recon/internal/logging"
	"fjacquet/eod-recon/internal/matrix"
	"fjacquet/eod-recon/internal/service"
	"fjacquet/eod-recon/internal/validation"

	"github.com/spf13/cobra"
)

// Options are the inputs of a summarize run.
type Options struct {
	Input          string
	From           string
	To             string
	Expenses       string
	Cash           string
	Corrections    []string
	Commissionable bool
	Format         string
}

var flags Options

// Cmd represents the summarize command
var Cmd = &cobra.Command{
	Use:   "summarize",
	Short: "Compute the EOD summary of a Matrix export",
	Long: `Compute the deposit split (trust, DMV, revenue) of the rows in a Matrix export.

Rows are washed before aggregation. Receipts passed with --correction are
removed from the commissionable view shown with --commissionable.

Example:
  eod-recon summarize -i matrix.csv --from 2025-03-14 --to 2025-03-14 -f csv`,
	Run: func(cmd *cobra.Command, args []string) {
		opts := flags
		opts.Input = root.SharedFlags.Input
		if opts.Input == "" && len(args) > 0 {
			opts.Input = args[0]
		}
		opts.From, opts.To, opts.Format = root.SharedFlags.From, root.SharedFlags.To, root.SharedFlags.Format

		common.Process(cmd, "Summarize", func(_ context.Context, c *container.Container, w io.Writer) error {
			return Run(c, opts, w)
		})
	},
}

func init() {
	Cmd.Flags().StringVar(&flags.Expenses, "expenses", "0", "Expenses paid out of the drawer")
	Cmd.Flags().StringVar(&flags.Cash, "cash", "", "Total cash in hand, to report the cash difference")
	Cmd.Flags().StringSliceVar(&flags.Corrections, "correction", nil, "Receipt number of an A/R correction (repeatable)")
	Cmd.Flags().BoolVar(&flags.Commissionable, "commissionable", false, "Print the A/R adjusted summary")
}

// Run parses the export and writes the summary to w.
func Run(c *container.Container, opts Options, w io.Writer) error {
	if err := validation.IsReadableFile(opts.Input); err != nil {
		return err
	}
	if err := validation.DateRange(opts.From, opts.To); err != nil {
		return err
	}
	svc := c.GetService()
	logger := c.GetLogger()

	txs, err := svc.Parser().ParseFile(opts.Input)
	if err != nil {
		return err
	}
	txs = matrix.FilterRange(txs, opts.From, opts.To)

	req := service.SubmitRequest{
		Transactions:  txs,
		Expenses:      currencyutils.ParseMoney(opts.Expenses),
		ARCorrections: opts.Corrections,
	}
	if opts.Cash != "" {
		req.TotalCashInHand = currencyutils.ParseMoney(opts.Cash)
	}

	report, commissionable := svc.Preview(req)
	if opts.Cash != "" {
		logger.Info("Cash difference",
			logging.F("cash_difference", currencyutils.FormatAmount(report.CashDifference)),
			logging.F(logging.FieldCount, len(txs)))
	}

	summary := report.Summary
	if opts.Commissionable {
		summary = commissionable
	}
	if err := c.GetReportGenerator().Summary(w, summary, opts.Format); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}
