// Package commands defines the ledger command-line interface.
package commands

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/isdelr/ledger-be/internal/chart"
	"github.com/isdelr/ledger-be/internal/config"
	"github.com/isdelr/ledger-be/internal/database"
	"github.com/isdelr/ledger-be/internal/logger"
)

// Version is set at build time with -ldflags "-X .../commands.Version=...".
var Version = "dev"

type globalOptions struct {
	envFile string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
// Without a subcommand it starts the server.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "ledger",
		Short:   "Double-entry bookkeeping API server",
		Version: Version,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "load environment variables from this file instead of ./.env")

	rootCmd.AddCommand(newServeCommand(opts))
	rootCmd.AddCommand(newMigrateCommand(opts))
	rootCmd.AddCommand(newReconcileCommand(opts))

	return rootCmd
}

// setup loads configuration, initializes logging and opens the migrated database.
func setup(opts *globalOptions) (*config.Config, *sql.DB, error) {
	cfg, err := config.Load(opts.envFile)
	if err != nil {
		return nil, nil, fmt.Errorf("loading configuration: %w", err)
	}
	logger.Init(cfg.LogLevel, cfg.IsProduction())

	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("applying database migrations: %w", err)
	}
	return cfg, db, nil
}

// loadChart returns the configured chart of accounts, or the built-in one.
func loadChart(cfg *config.Config) ([]chart.Template, error) {
	if cfg.ChartPath == "" {
		return chart.Default(), nil
	}
	tmpl, err := chart.Load(cfg.ChartPath)
	if err != nil {
		return nil, fmt.Errorf("loading chart %s: %w", cfg.ChartPath, err)
	}
	log.Info().Str("path", cfg.ChartPath).Int("accounts", len(tmpl)).Msg("Loaded chart of accounts")
	return tmpl, nil
}
