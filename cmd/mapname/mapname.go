// Package mapname links Matrix CSR names to agent emails.
package mapname

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"fjacquet/eod-recon/cmd/common"
	"fjacquet/eod-recon/internal/container"
	"fjacquet/eod-recon/internal/service"

	"github.com/spf13/cobra"
)

var list bool

// Cmd represents the map-name command
var Cmd = &cobra.Command{
	Use:   "map-name [csr name] [agent email]",
	Short: "Link a Matrix CSR name to an agent",
	Long: `Save a name mapping so that rows carrying the CSR name are attributed to the
agent on the next reconciliation. Saved mappings take precedence over the
profile directory. Use --list to print the saved mappings.

Example:
  eod-recon map-name "Bobby T" robert.tate@agency.com`,
	Args: func(cmd *cobra.Command, args []string) error {
		if list {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.ExactArgs(2)(cmd, args)
	},
	Run: func(cmd *cobra.Command, args []string) {
		common.Process(cmd, "Map name", func(ctx context.Context, c *container.Container, w io.Writer) error {
			if list {
				return List(ctx, c, w)
			}
			return Save(ctx, c, args[0], args[1], w)
		})
	},
}

func init() {
	Cmd.Flags().BoolVar(&list, "list", false, "List saved mappings")
}

// Save upserts the mapping.
func Save(ctx context.Context, c *container.Container, csvName, email string, w io.Writer) error {
	mapping, err := c.GetService().SaveNameMapping(ctx, service.NameMappingRequest{CSVName: csvName, AgentEmail: email})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s -> %s\n", mapping.CSVName, mapping.AgentEmail)
	return err
}

// List prints the saved mappings.
func List(ctx context.Context, c *container.Container, w io.Writer) error {
	mappings, err := c.GetService().ListNameMappings(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CSR NAME\tAGENT EMAIL\tUPDATED")
	for _, m := range mappings {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", m.CSVName, m.AgentEmail, m.UpdatedAt.Format("2006-01-02"))
	}
	return tw.Flush()
}
