package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the TaskVault CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "taskvault",
		Short: "TaskVault - a multi-user task list server",
		Long: `TaskVault is a multi-user task list server with session
authentication and owner-scoped task storage in PostgreSQL.`,
	}

	// Global flag for config file path
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (YAML)")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}
