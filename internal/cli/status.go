package cli

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mward/statingest/internal/store"
)

func newStatusCommand(opts *RootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "status <source-code>",
		Short: "Show a source's ingestion state and recent runs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return showStatus(cmd, opts, args[0], limit)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "number of recent runs to show")
	return cmd
}

// statusView is the JSON shape for the status command.
type statusView struct {
	Source sourceView `json:"source"`
	Runs   []runView  `json:"runs"`
}

type runView struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	StartedAt  string `json:"started_at"`
	FinishedAt string `json:"finished_at,omitempty"`
	Processed  int    `json:"records_processed"`
	Inserted   int    `json:"records_inserted"`
	Updated    int    `json:"records_updated"`
	NoChanges  bool   `json:"no_changes"`
	Error      string `json:"error,omitempty"`
}

func showStatus(cmd *cobra.Command, opts *RootOptions, sourceCode string, limit int) error {
	st, _, err := openStore(opts)
	if err != nil {
		return err
	}
	defer st.Close()

	formatter := NewOutputFormatterWithWriters(opts.Format, cmd.OutOrStdout(), cmd.ErrOrStderr())

	src, err := st.GetSource(cmd.Context(), sourceCode)
	if err != nil {
		if errors.Is(err, store.ErrSourceNotFound) {
			if ferr := formatter.Error("SOURCE_NOT_FOUND", fmt.Sprintf("unknown source %q", sourceCode), ""); ferr != nil {
				return WrapExitError(ferr, ExitFailure)
			}
			return NewExitError(ExitCommandError, err)
		}
		return WrapExitError(err, ExitFailure)
	}

	runs, err := st.ListRuns(cmd.Context(), sourceCode, limit)
	if err != nil {
		return WrapExitError(err, ExitFailure)
	}

	view := statusView{
		Source: sourceView{
			Code:    src.Code,
			Name:    src.Name,
			Kind:    src.Kind,
			Cadence: src.Cadence,
			Tier:    src.Tier,
			Status:  string(src.Status),
		},
	}
	if src.LastCheckedAt != nil {
		view.Source.LastChecked = src.LastCheckedAt.Format("2006-01-02 15:04")
	}
	if src.LastUpdatedAt != nil {
		view.Source.LastUpdated = src.LastUpdatedAt.Format("2006-01-02 15:04")
	}
	for _, r := range runs {
		rv := runView{
			ID:        r.ID,
			Status:    string(r.Status),
			StartedAt: r.StartedAt.Format("2006-01-02 15:04:05"),
			Processed: r.RecordsProcessed,
			Inserted:  r.RecordsInserted,
			Updated:   r.RecordsUpdated,
			NoChanges: r.NoChanges,
			Error:     r.Error,
		}
		if r.FinishedAt != nil {
			rv.FinishedAt = r.FinishedAt.Format("2006-01-02 15:04:05")
		}
		view.Runs = append(view.Runs, rv)
	}

	if err := formatter.Success(view, func(w io.Writer) {
		renderStatus(w, view)
	}); err != nil {
		return WrapExitError(err, ExitFailure)
	}
	return nil
}

func renderStatus(w io.Writer, view statusView) {
	s := view.Source
	fmt.Fprintf(w, "%s  %s\n", s.Code, s.Name)
	fmt.Fprintf(w, "  kind: %s  cadence: %s  tier: %d  status: %s\n", s.Kind, s.Cadence, s.Tier, s.Status)
	fmt.Fprintf(w, "  last checked: %s  last updated: %s\n", orDash(s.LastChecked), orDash(s.LastUpdated))

	if len(view.Runs) == 0 {
		fmt.Fprintln(w, "  no runs recorded")
		return
	}
	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tSTATUS\tSTARTED\tPROCESSED\tINSERTED\tUPDATED\tNOTE")
	for _, r := range view.Runs {
		note := r.Error
		if note == "" && r.NoChanges {
			note = "no changes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			shortID(r.ID), r.Status, r.StartedAt, r.Processed, r.Inserted, r.Updated, orDash(note))
	}
	tw.Flush()
}

// shortID trims UUIDs for table display; full IDs remain in JSON output.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
