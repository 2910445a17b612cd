// Package regions manages the office to region map used by rollups.
package regions

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"fjacquet/eod-recon/cmd/common"
	"fjacquet/eod-recon/cmd/root"
	"fjacquet/eod-recon/internal/container"
	internalcommon "fjacquet/eod-recon/internal/common"
	"fjacquet/eod-recon/internal/validation"

	"github.com/spf13/cobra"
)

// Row is one line of a region map CSV.
type Row struct {
	Office string `csv:"office"`
	Region string `csv:"region"`
}

// Cmd represents the regions command
var Cmd = &cobra.Command{
	Use:   "regions",
	Short: "Manage the office to region map",
}

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Replace the region map from a CSV file with office and region columns",
	Long: `Replace the region map. The CSV needs an "office" and a "region" column; office
labels such as "CA010 - Fresno" are reduced to their code.

Example:
  eod-recon regions import regions.csv`,
	Run: func(cmd *cobra.Command, args []string) {
		input := root.SharedFlags.Input
		if input == "" && len(args) > 0 {
			input = args[0]
		}
		common.Process(cmd, "Region import", func(ctx context.Context, c *container.Container, w io.Writer) error {
			return Import(ctx, c, input, w)
		})
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the region map",
	Run: func(cmd *cobra.Command, args []string) {
		common.Process(cmd, "Region list", List)
	},
}

func init() {
	Cmd.AddCommand(importCmd, listCmd)
}

// Import reads the CSV at input and saves it as the region map.
func Import(ctx context.Context, c *container.Container, input string, w io.Writer) error {
	if err := validation.IsReadableFile(input); err != nil {
		return err
	}
	f, err := os.Open(input) // #nosec G304 -- path chosen by the operator
	if err != nil {
		return fmt.Errorf("error opening %s: %w", input, err)
	}
	defer f.Close()

	rows, err := internalcommon.ReadCSV[Row](f, delimiter(c), c.GetLogger())
	if err != nil {
		return err
	}
	regions := make(map[string]string, len(rows))
	for _, r := range rows {
		regions[r.Office] = r.Region
	}

	saved, err := c.GetService().SaveRegions(ctx, regions)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "saved %d offices\n", len(saved))
	return err
}

// List prints the region map sorted by office.
func List(ctx context.Context, c *container.Container, w io.Writer) error {
	regions, err := c.GetService().LoadRegions(ctx)
	if err != nil {
		return err
	}
	offices := make([]string, 0, len(regions))
	for office := range regions {
		offices = append(offices, office)
	}
	sort.Strings(offices)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "OFFICE\tREGION")
	for _, office := range offices {
		fmt.Fprintf(tw, "%s\t%s\n", office, regions[office])
	}
	return tw.Flush()
}

func delimiter(c *container.Container) rune {
	if r := []rune(c.GetConfig().CSV.Delimiter); len(r) == 1 {
		return r[0]
	}
	return ','
}
