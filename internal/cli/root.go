// Package cli implements the statingest command tree. Commands open the
// SQLite store, drive the ingestion pipeline, and render results through an
// OutputFormatter so that --format json stays machine-readable.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mward/statingest/internal/config"
	"github.com/mward/statingest/internal/store"
)

// ValidFormats lists the accepted values for --format.
var ValidFormats = []string{"text", "json"}

// RootOptions holds the persistent flags shared by every subcommand.
type RootOptions struct {
	DBPath     string
	ConfigPath string
	Format     string
	Verbose    bool
}

// NewRootCommand builds the statingest command tree.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	rootCmd := &cobra.Command{
		Use:   "statingest",
		Short: "Ingest schema-unstable statistical releases into a local warehouse",
		Long: `statingest fetches published statistical releases (spreadsheets, CSV
extracts, HTML tables), maps their drifting layouts onto a stable schema,
resolves entity labels against reference data, and loads the results into a
local SQLite warehouse with a full per-run ledger.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !validFormat(opts.Format) {
				err := fmt.Errorf("invalid format %q (valid: text, json)", opts.Format)
				fmt.Fprintf(cmd.ErrOrStderr(), "error: %s\n", err)
				return NewExitError(ExitCommandError, err)
			}
			setupLogging(opts.Verbose)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "path to the SQLite database (default from config)")
	rootCmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format: text or json")
	rootCmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(newRunCommand(opts))
	rootCmd.AddCommand(newRunAllCommand(opts))
	rootCmd.AddCommand(newSourcesCommand(opts))
	rootCmd.AddCommand(newStatusCommand(opts))
	rootCmd.AddCommand(newSeedCommand(opts))

	return rootCmd
}

func validFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

func setupLogging(verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// loadConfig resolves the effective configuration: file, then environment,
// then the --db flag which wins over both.
func loadConfig(opts *RootOptions) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return cfg, err
	}
	if opts.DBPath != "" {
		cfg.DatabasePath = opts.DBPath
	}
	return cfg, nil
}

// openStore opens the configured database, returning the store and the
// resolved config. Errors are left unwrapped so main prints them with the
// default failure exit code.
func openStore(opts *RootOptions) (*store.Store, config.Config, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, cfg, err
	}
	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return nil, cfg, fmt.Errorf("opening database %s: %w", cfg.DatabasePath, err)
	}
	return st, cfg, nil
}
