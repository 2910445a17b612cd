// Package report renders summaries, reconciliation overlays and rollups as
// JSON, CSV or an aligned text table.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"
	"text/tabwriter"

	"fjacquet/eod-recon/internal/common"
	"fjacquet/eod-recon/internal/currencyutils"
	"fjacquet/eod-recon/internal/logging"
	"fjacquet/eod-recon/internal/models"
	"fjacquet/eod-recon/internal/reconcile"
	"fjacquet/eod-recon/internal/rollup"
	"fjacquet/eod-recon/internal/validation"

	"github.com/shopspring/decimal"
)

// SummaryLine is one field of a Summary.
type SummaryLine struct {
	Field string `csv:"field" json:"field"`
	Value string `csv:"value" json:"value"`
}

// OverlayLine flattens an overlay group for CSV and table output.
type OverlayLine struct {
	ReportDate      string `csv:"report_date"`
	Office          string `csv:"office"`
	CSRName         string `csv:"csr_name"`
	Transactions    int    `csv:"transactions"`
	TrustDeposit    string `csv:"trust_deposit"`
	MissingEOD      bool   `csv:"missing_eod"`
	UnmappedName    bool   `csv:"unmapped_name"`
	MatchMethod     string `csv:"match_method"`
	MatchScore      int    `csv:"match_score"`
	MatchedReport   string `csv:"matched_report_id"`
	ResolvedEmail   string `csv:"resolved_email"`
	Collision       string `csv:"collision"`
	MissingReceipts string `csv:"missing_receipts"`
}

// RegionLine is one region total.
type RegionLine struct {
	Region         string `csv:"region"`
	Offices        string `csv:"offices"`
	Reports        int    `csv:"reports"`
	TrustDeposit   string `csv:"trust_deposit"`
	DMVDeposit     string `csv:"dmv_deposit"`
	RevenueDeposit string `csv:"revenue_deposit"`
}

// ReportLine is one stored report.
type ReportLine struct {
	ID              string `csv:"id"`
	ReportDate      string `csv:"report_date"`
	Office          string `csv:"office"`
	AgentEmail      string `csv:"agent_email"`
	TrustDeposit    string `csv:"trust_deposit"`
	DMVDeposit      string `csv:"dmv_deposit"`
	RevenueDeposit  string `csv:"revenue_deposit"`
	CashDifference  string `csv:"cash_difference"`
	CashVerified    bool   `csv:"cash_verified"`
	DepositVerified bool   `csv:"deposit_verified"`
}

// Generator writes outputs in one of the supported formats.
type Generator struct {
	delimiter rune
	logger    logging.Logger
}

// NewGenerator creates a generator. delimiter applies to CSV output.
func NewGenerator(delimiter rune, logger logging.Logger) *Generator {
	if delimiter == 0 {
		delimiter = ','
	}
	return &Generator{delimiter: delimiter, logger: logging.Component(logger, "report")}
}

// Summary renders a summary.
func (g *Generator) Summary(w io.Writer, s models.Summary, format string) error {
	if format == validation.FormatJSON {
		return g.writeJSON(w, s)
	}
	return render(g, w, SummaryLines(s), format)
}

// Reports renders a list of stored reports.
func (g *Generator) Reports(w io.Writer, reports []models.Report, format string) error {
	if format == validation.FormatJSON {
		return g.writeJSON(w, reports)
	}
	lines := make([]ReportLine, 0, len(reports))
	for _, r := range reports {
		lines = append(lines, ReportLine{
			ID:              r.ID,
			ReportDate:      r.ReportDate,
			Office:          r.Office,
			AgentEmail:      r.AgentEmail,
			TrustDeposit:    money(r.Summary.TrustDeposit),
			DMVDeposit:      money(r.Summary.DMVDeposit),
			RevenueDeposit:  money(r.Summary.RevenueDeposit),
			CashDifference:  money(r.CashDifference),
			CashVerified:    r.CashVerified,
			DepositVerified: r.DepositVerified,
		})
	}
	return render(g, w, lines, format)
}

// Reconciliation renders the groups of a run. Only flagged groups are
// written unless all is set.
func (g *Generator) Reconciliation(w io.Writer, res reconcile.Result, all bool, format string) error {
	groups := res.Flagged
	if all {
		groups = res.Groups
	}
	if format == validation.FormatJSON {
		return g.writeJSON(w, struct {
			Groups          []models.MatrixOverlayGroup        `json:"groups"`
			MissingReceipts map[string][]models.MissingReceipt `json:"missing_receipts"`
			WashedReceipts  []string                           `json:"washed_receipts"`
			SkippedRows     int                                `json:"skipped_rows"`
		}{groups, res.MissingReceipts, res.WashedReceipts, res.SkippedRows})
	}
	return render(g, w, OverlayLines(groups), format)
}

// Rollup renders region totals.
func (g *Generator) Rollup(w io.Writer, res rollup.Result, format string) error {
	if format == validation.FormatJSON {
		return g.writeJSON(w, res)
	}
	lines := make([]RegionLine, 0, len(res.Regions))
	for _, r := range res.Regions {
		lines = append(lines, RegionLine{
			Region:         r.Region,
			Offices:        strings.Join(r.Offices, " "),
			Reports:        r.ReportCount,
			TrustDeposit:   money(r.Summary.TrustDeposit),
			DMVDeposit:     money(r.Summary.DMVDeposit),
			RevenueDeposit: money(r.Summary.RevenueDeposit),
		})
	}
	return render(g, w, lines, format)
}

// ImportResult renders the outcome of an import.
func (g *Generator) ImportResult(w io.Writer, res models.ImportResult, format string) error {
	if format == validation.FormatJSON {
		return g.writeJSON(w, res)
	}
	lines := []SummaryLine{
		{"batch_id", res.BatchID},
		{"total", strconv.Itoa(res.Total)},
		{"inserted", strconv.Itoa(res.Inserted)},
		{"failed", strconv.Itoa(res.Failed)},
	}
	for i, e := range res.Errors {
		lines = append(lines, SummaryLine{fmt.Sprintf("error_%d", i+1), e})
	}
	return render(g, w, lines, format)
}

// SummaryLines lists every field of s in declaration order, using the JSON
// field names. Money is rendered with two decimals.
func SummaryLines(s models.Summary) []SummaryLine {
	v := reflect.ValueOf(s)
	t := v.Type()
	lines := make([]SummaryLine, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		name := strings.Split(t.Field(i).Tag.Get("json"), ",")[0]
		var value string
		switch fv := v.Field(i).Interface().(type) {
		case decimal.Decimal:
			value = fv.StringFixed(2)
		case int:
			value = strconv.Itoa(fv)
		default:
			value = fmt.Sprint(fv)
		}
		lines = append(lines, SummaryLine{Field: name, Value: value})
	}
	return lines
}

// OverlayLines flattens overlay groups.
func OverlayLines(groups []models.MatrixOverlayGroup) []OverlayLine {
	lines := make([]OverlayLine, 0, len(groups))
	for _, grp := range groups {
		line := OverlayLine{
			ReportDate:    grp.Key.ReportDate,
			Office:        grp.Key.Office,
			CSRName:       grp.CSRName,
			Transactions:  len(grp.Transactions),
			TrustDeposit:  money(grp.Summary.TrustDeposit),
			MissingEOD:    grp.IsMissingEOD,
			UnmappedName:  grp.IsUnmappedName,
			MatchMethod:   grp.MatchMethod,
			MatchScore:    grp.MatchScore,
			MatchedReport: grp.MatchedReportID,
			ResolvedEmail: grp.ResolvedEmail,
		}
		if grp.CollisionReportID != "" {
			line.Collision = fmt.Sprintf("%s (%d)", grp.CollisionReportName, grp.CollisionScore)
		}
		receipts := make([]string, 0, len(grp.MissingReceipts))
		for _, m := range grp.MissingReceipts {
			receipts = append(receipts, m.Receipt)
		}
		line.MissingReceipts = strings.Join(receipts, " ")
		lines = append(lines, line)
	}
	return lines
}

func money(d decimal.Decimal) string {
	return currencyutils.FormatAmount(d)
}

func render[T any](g *Generator, w io.Writer, rows []T, format string) error {
	switch format {
	case validation.FormatCSV:
		if err := common.WriteCSV(w, rows, g.delimiter); err != nil {
			g.logger.Error("Failed to write CSV output", logging.F(logging.FieldError, err))
			return fmt.Errorf("failed to write CSV output: %w", err)
		}
		return nil
	case validation.FormatTable:
		return writeTable(w, rows)
	default:
		return validation.IsValidOutputFormat(format)
	}
}

func (g *Generator) writeJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		g.logger.Error("Failed to marshal JSON output", logging.F(logging.FieldError, err))
		return fmt.Errorf("failed to marshal JSON output: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// writeTable prints rows with their csv tags as the header.
func writeTable[T any](w io.Writer, rows []T) error {
	var zero T
	t := reflect.TypeOf(zero)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	header := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		header = append(header, strings.ToUpper(t.Field(i).Tag.Get("csv")))
	}
	if _, err := fmt.Fprintln(tw, strings.Join(header, "\t")); err != nil {
		return err
	}

	for _, row := range rows {
		v := reflect.ValueOf(row)
		cells := make([]string, 0, v.NumField())
		for i := 0; i < v.NumField(); i++ {
			cells = append(cells, fmt.Sprint(v.Field(i).Interface()))
		}
		if _, err := fmt.Fprintln(tw, strings.Join(cells, "\t")); err != nil {
			return err
		}
	}
	return tw.Flush()
}
