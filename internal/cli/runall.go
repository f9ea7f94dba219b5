package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mward/statingest/internal/ingest"
)

func newRunAllCommand(opts *RootOptions) *cobra.Command {
	var tier int

	cmd := &cobra.Command{
		Use:   "run-all",
		Short: "Execute one ingestion attempt per active source",
		Long: `Run-all processes every active source sequentially in code order. One
source's failure is recorded and the batch moves on; the command exits
non-zero if any source failed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAllSources(cmd, opts, tier)
		},
	}
	cmd.Flags().IntVar(&tier, "tier", 0, "only run sources of this tier (0 = all)")
	return cmd
}

func runAllSources(cmd *cobra.Command, opts *RootOptions, tier int) error {
	st, cfg, err := openStore(opts)
	if err != nil {
		return err
	}
	defer st.Close()

	formatter := NewOutputFormatterWithWriters(opts.Format, cmd.OutOrStdout(), cmd.ErrOrStderr())
	pipeline := ingest.New(st, newFetchClient(cfg.Fetch.Timeout, cfg.Fetch.UserAgent))

	batch, batchErr := pipeline.RunAll(cmd.Context(), ingest.BatchOptions{Tier: tier})
	if batchErr != nil {
		if ferr := formatter.Error("BATCH_FAILED", batchErr.Error(), ""); ferr != nil {
			return WrapExitError(ferr, ExitFailure)
		}
		return WrapExitError(batchErr, ExitFailure)
	}

	if err := formatter.Success(batch, func(w io.Writer) {
		for _, r := range batch.Results {
			fmt.Fprintln(w, r.Describe())
		}
		fmt.Fprintf(w, "batch: %d succeeded, %d failed\n", batch.Succeeded, batch.Failed)
	}); err != nil {
		return WrapExitError(err, ExitFailure)
	}

	if batch.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Errorf("%d of %d sources failed", batch.Failed, batch.Succeeded+batch.Failed))
	}
	return nil
}
