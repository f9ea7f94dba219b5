package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mward/statingest/internal/refdata"
)

func newSeedCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed [dir]",
		Short: "Load reference data CSVs into the database",
		Long: `Seed upserts local authorities, nationalities and source descriptors
from CSV files in the given directory (default from config). Existing
entities have their attributes refreshed; nothing is deleted.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}
			return seedDatabase(cmd, opts, dir)
		},
	}
}

func seedDatabase(cmd *cobra.Command, opts *RootOptions, dir string) error {
	st, cfg, err := openStore(opts)
	if err != nil {
		return err
	}
	defer st.Close()

	if dir == "" {
		dir = cfg.SeedDir
	}

	formatter := NewOutputFormatterWithWriters(opts.Format, cmd.OutOrStdout(), cmd.ErrOrStderr())

	result, err := refdata.Seed(cmd.Context(), st, dir)
	if err != nil {
		if ferr := formatter.Error("SEED_FAILED", err.Error(), ""); ferr != nil {
			return WrapExitError(ferr, ExitFailure)
		}
		return NewExitError(ExitFailure, err)
	}

	if err := formatter.Success(result, func(w io.Writer) {
		fmt.Fprintf(w, "seeded %d local authorities, %d nationalities, %d sources from %s\n",
			result.Authorities, result.Nationalities, result.Sources, dir)
	}); err != nil {
		return WrapExitError(err, ExitFailure)
	}
	return nil
}
