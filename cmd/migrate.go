package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kanonhq/kanon/db"
	"github.com/kanonhq/kanon/internal/config"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	RunE: func(*cobra.Command, []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if !cfg.DatabaseConfigured() {
			return fmt.Errorf("no database configured: set postgres_host or DATABASE_URL")
		}

		logger := newLogger(cfg)
		if err := db.Migrate(cfg.PostgresURL(), logger); err != nil {
			return fmt.Errorf("migrating database: %w", err)
		}
		logger.Info("migrations applied")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
