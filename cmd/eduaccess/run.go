// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EduAccess Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/eduaccess/eduaccess/internal/auth"
	authpg "github.com/eduaccess/eduaccess/internal/auth/postgres"
	"github.com/eduaccess/eduaccess/internal/config"
	"github.com/eduaccess/eduaccess/internal/console"
	"github.com/eduaccess/eduaccess/internal/logging"
	"github.com/eduaccess/eduaccess/internal/observability"
	"github.com/eduaccess/eduaccess/internal/store"
)

const observabilityShutdownTimeout = 5 * time.Second

// NewRunCmd creates the run subcommand.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the interactive eduaccess terminal application",
		Long: `Start the interactive terminal application: user registration and
login, password resets, and the administrative menu, backed by the
PostgreSQL credential store.`,
		RunE: runApp,
	}

	cmd.Flags().String(config.KeyDatabaseURL, "", "PostgreSQL connection string (default: DATABASE_URL)")
	cmd.Flags().String(config.KeyLogFormat, "", "log format (json or text)")
	cmd.Flags().String(config.KeyMetricsAddr, "", "metrics/health HTTP address (empty = disabled)")

	return cmd
}

func runApp(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}

	logging.SetDefault("eduaccess", cmd.Root().Version, cfg.LogFormat)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	pool, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("could not connect to credential store", "error", err)
		return err
	}
	defer pool.Close()

	slog.Info("connected to credential store")

	accounts := authpg.NewAccountRepository(pool)
	invitations := authpg.NewInvitationRepository(pool)

	hasher := auth.NewArgon2idHasher()
	otp := auth.NewOTPIssuer()

	gate, err := auth.NewInvitationGate(invitations)
	if err != nil {
		return err
	}
	credentials, err := auth.NewCredentialServiceWithLogger(accounts, gate, hasher, otp, slog.Default())
	if err != nil {
		return err
	}
	admin, err := auth.NewAdminServiceWithLogger(accounts, gate, otp, slog.Default())
	if err != nil {
		return err
	}

	var metrics *observability.Metrics
	if cfg.MetricsAddr != "" {
		obs := observability.NewServer(cfg.MetricsAddr, func() bool {
			return pool.Ping(ctx) == nil
		})
		if _, err := obs.Start(); err != nil {
			return err
		}
		metrics = obs.Metrics()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), observabilityShutdownTimeout)
			defer cancel()
			if stopErr := obs.Stop(shutdownCtx); stopErr != nil {
				slog.Warn("observability server shutdown failed", "error", stopErr)
			}
		}()
	}

	ui, err := console.New(console.Options{
		Input:       os.Stdin,
		Output:      os.Stdout,
		Credentials: credentials,
		Admin:       admin,
		Accounts:    accounts,
		Hasher:      hasher,
		Metrics:     metrics,
		Logger:      slog.Default(),
	})
	if err != nil {
		return err
	}

	return ui.Run(ctx)
}
