// Package profiles seeds the agent directory used for name matching.
package profiles

import (
	"context"
	"fmt"
	"io"
	"os"

	"fjacquet/eod-recon/cmd/common"
	"fjacquet/eod-recon/cmd/root"
	"fjacquet/eod-recon/internal/container"
	internalcommon "fjacquet/eod-recon/internal/common"
	"fjacquet/eod-recon/internal/models"
	"fjacquet/eod-recon/internal/validation"

	"github.com/spf13/cobra"
)

// Row is one line of a profile CSV.
type Row struct {
	Email    string `csv:"email"`
	FullName string `csv:"full_name"`
}

// Cmd represents the profiles command
var Cmd = &cobra.Command{
	Use:   "profiles [file]",
	Short: "Seed agent profiles from a CSV with email and full_name columns",
	Long: `Insert or update agent profiles. Profiles are the directory the reconciler
resolves CSR names against when no name mapping exists.

Example:
  eod-recon profiles agents.csv`,
	Run: func(cmd *cobra.Command, args []string) {
		input := root.SharedFlags.Input
		if input == "" && len(args) > 0 {
			input = args[0]
		}
		common.Process(cmd, "Profile seed", func(ctx context.Context, c *container.Container, w io.Writer) error {
			return Seed(ctx, c, input, w)
		})
	},
}

// Seed reads the CSV at input and upserts its profiles.
func Seed(ctx context.Context, c *container.Container, input string, w io.Writer) error {
	if err := validation.IsReadableFile(input); err != nil {
		return err
	}
	f, err := os.Open(input) // #nosec G304 -- path chosen by the operator
	if err != nil {
		return fmt.Errorf("error opening %s: %w", input, err)
	}
	defer f.Close()

	delim := ','
	if r := []rune(c.GetConfig().CSV.Delimiter); len(r) == 1 {
		delim = r[0]
	}
	rows, err := internalcommon.ReadCSV[Row](f, delim, c.GetLogger())
	if err != nil {
		return err
	}

	profiles := make([]models.Profile, 0, len(rows))
	for _, r := range rows {
		profiles = append(profiles, models.Profile{Email: r.Email, FullName: r.FullName})
	}
	if err := c.GetService().SeedProfiles(ctx, profiles); err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "seeded %d profiles\n", len(profiles))
	return err
}
