// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskVault Contributors

package main

import (
	"log/slog"
	"os"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/taskvault/taskvault/internal/store"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	var (
		databaseURL string
		down        bool
		showVersion bool
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long:  `Apply pending schema migrations against the PostgreSQL database.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if databaseURL == "" {
				databaseURL = os.Getenv("DATABASE_URL")
			}
			if databaseURL == "" {
				return oops.Code("CONFIG_INVALID").Errorf("database-url flag or DATABASE_URL environment variable is required")
			}
			return runMigrate(cmd, databaseURL, down, showVersion)
		},
	}

	cmd.Flags().StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (default: DATABASE_URL env)")
	cmd.Flags().BoolVar(&down, "down", false, "roll back all migrations (destructive)")
	cmd.Flags().BoolVar(&showVersion, "version-only", false, "print the current schema version and exit")

	return cmd
}

func runMigrate(cmd *cobra.Command, databaseURL string, down, showVersion bool) error {
	migrator, err := store.NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := migrator.Close(); closeErr != nil {
			slog.Warn("error closing migrator", "error", closeErr)
		}
	}()

	if showVersion {
		version, dirty, err := migrator.Version()
		if err != nil {
			return err
		}
		cmd.Printf("schema version: %d (dirty: %t)\n", version, dirty)
		return nil
	}

	if down {
		cmd.Println("Rolling back migrations...")
		if err := migrator.Down(); err != nil {
			return err
		}
		cmd.Println("Rollback completed")
		return nil
	}

	cmd.Println("Running migrations...")
	if err := migrator.Up(); err != nil {
		return err
	}
	cmd.Println("Migrations completed successfully")
	return nil
}
