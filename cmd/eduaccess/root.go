// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EduAccess Contributors

package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the eduaccess CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eduaccess",
		Short: "eduaccess - invitation-gated multi-role access control",
		Long: `eduaccess is a terminal application managing invitation-gated
registration, password and one-time-password credential flows, and
multi-role (admin/instructor/student) sessions over a PostgreSQL
credential store.`,
	}

	// Global flag for config file path
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	// Add subcommands
	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}
