package main

import (
	"fmt"

	"github.com/msomdec/healthyu/internal/config"
	"github.com/msomdec/healthyu/internal/repository/sqlite"
	"github.com/spf13/cobra"
)

var migrateDryRun bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "list pending migrations without applying them")
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Read(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	pending, err := db.PendingMigrations(cmd.Context())
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	out := cmd.OutOrStdout()
	if len(pending) == 0 {
		fmt.Fprintln(out, "database is up to date")
		return nil
	}
	if migrateDryRun {
		for _, name := range pending {
			fmt.Fprintf(out, "pending %s\n", name)
		}
		return nil
	}

	if err := db.Migrate(cmd.Context()); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	for _, name := range pending {
		fmt.Fprintf(out, "applied %s\n", name)
	}
	return nil
}
