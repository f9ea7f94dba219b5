package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/mward/statingest/internal/fetch"
	"github.com/mward/statingest/internal/ingest"
)

func newRunCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run <source-code>",
		Short: "Execute one ingestion attempt for a single source",
		Long: `Run fetches the source's current publication, short-circuits when the
payload fingerprint is unchanged, and otherwise decodes, maps, resolves and
loads it. Every attempt is recorded on the run ledger, including failures.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSource(cmd, opts, args[0])
		},
	}
}

func runSource(cmd *cobra.Command, opts *RootOptions, sourceCode string) error {
	st, cfg, err := openStore(opts)
	if err != nil {
		return err
	}
	defer st.Close()

	formatter := NewOutputFormatterWithWriters(opts.Format, cmd.OutOrStdout(), cmd.ErrOrStderr())
	pipeline := ingest.New(st, newFetchClient(cfg.Fetch.Timeout, cfg.Fetch.UserAgent))

	result, runErr := pipeline.Run(cmd.Context(), sourceCode)
	if runErr != nil {
		return renderRunError(formatter, runErr)
	}

	if err := formatter.Success(result, func(w io.Writer) {
		fmt.Fprintln(w, result.Describe())
	}); err != nil {
		return WrapExitError(err, ExitFailure)
	}
	return nil
}

// renderRunError maps pipeline errors onto exit codes: an unknown source is
// a usage error, everything downstream of fetch is an operational failure.
func renderRunError(formatter *OutputFormatter, err error) error {
	code := "PIPELINE_FAILED"
	exit := ExitFailure
	switch {
	case ingest.IsSourceNotFound(err):
		code = "SOURCE_NOT_FOUND"
		exit = ExitCommandError
	case ingest.IsFetchFailure(err):
		code = "FETCH_FAILED"
	case ingest.IsDecodeFailure(err):
		code = "DECODE_FAILED"
	case ingest.IsLoadFailure(err):
		code = "LOAD_FAILED"
	}
	if ferr := formatter.Error(code, err.Error(), ""); ferr != nil {
		return WrapExitError(ferr, ExitFailure)
	}
	return NewExitError(exit, err)
}

func newFetchClient(timeout time.Duration, userAgent string) *fetch.Client {
	var fetchOpts []fetch.Option
	if timeout > 0 {
		fetchOpts = append(fetchOpts, fetch.WithTimeout(timeout))
	}
	if userAgent != "" {
		fetchOpts = append(fetchOpts, fetch.WithUserAgent(userAgent))
	}
	return fetch.New(fetchOpts...)
}
