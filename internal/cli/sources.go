package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mward/statingest/internal/store"
)

func newSourcesCommand(opts *RootOptions) *cobra.Command {
	var (
		status string
		tier   int
	)

	cmd := &cobra.Command{
		Use:   "sources",
		Short: "List registered source descriptors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listSources(cmd, opts, status, tier)
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "filter by status: active, deprecated, error")
	cmd.Flags().IntVar(&tier, "tier", 0, "filter by tier (0 = all)")
	return cmd
}

// sourceView is the JSON shape for one descriptor row.
type sourceView struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	Cadence     string `json:"cadence"`
	Tier        int    `json:"tier"`
	Status      string `json:"status"`
	LastChecked string `json:"last_checked_at,omitempty"`
	LastUpdated string `json:"last_updated_at,omitempty"`
}

func listSources(cmd *cobra.Command, opts *RootOptions, status string, tier int) error {
	st, _, err := openStore(opts)
	if err != nil {
		return err
	}
	defer st.Close()

	formatter := NewOutputFormatterWithWriters(opts.Format, cmd.OutOrStdout(), cmd.ErrOrStderr())

	sources, err := st.ListSources(cmd.Context(), store.ListSourcesOptions{
		Status: store.SourceStatus(status),
		Tier:   tier,
	})
	if err != nil {
		return WrapExitError(err, ExitFailure)
	}

	views := make([]sourceView, 0, len(sources))
	for _, s := range sources {
		v := sourceView{
			Code:    s.Code,
			Name:    s.Name,
			Kind:    s.Kind,
			Cadence: s.Cadence,
			Tier:    s.Tier,
			Status:  string(s.Status),
		}
		if s.LastCheckedAt != nil {
			v.LastChecked = s.LastCheckedAt.Format("2006-01-02 15:04")
		}
		if s.LastUpdatedAt != nil {
			v.LastUpdated = s.LastUpdatedAt.Format("2006-01-02 15:04")
		}
		views = append(views, v)
	}

	if err := formatter.Success(views, func(w io.Writer) {
		renderSourceTable(w, views)
	}); err != nil {
		return WrapExitError(err, ExitFailure)
	}
	return nil
}

func renderSourceTable(w io.Writer, views []sourceView) {
	if len(views) == 0 {
		fmt.Fprintln(w, "no sources registered")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tKIND\tCADENCE\tTIER\tSTATUS\tLAST CHECKED\tLAST UPDATED")
	for _, v := range views {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
			v.Code, v.Kind, v.Cadence, v.Tier, v.Status, orDash(v.LastChecked), orDash(v.LastUpdated))
	}
	tw.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
