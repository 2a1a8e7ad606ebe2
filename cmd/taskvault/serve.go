// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskVault Contributors

package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/taskvault/taskvault/internal/auth"
	authmemory "github.com/taskvault/taskvault/internal/auth/memory"
	authpostgres "github.com/taskvault/taskvault/internal/auth/postgres"
	"github.com/taskvault/taskvault/internal/config"
	"github.com/taskvault/taskvault/internal/httpapi"
	"github.com/taskvault/taskvault/internal/logging"
	"github.com/taskvault/taskvault/internal/observability"
	"github.com/taskvault/taskvault/internal/store"
	"github.com/taskvault/taskvault/internal/task"
	taskpostgres "github.com/taskvault/taskvault/internal/task/postgres"
)

// Default values for serve command flags.
const (
	defaultListenAddr   = ":8080"
	defaultMetricsAddr  = "127.0.0.1:9100"
	defaultLogFormat    = "json"
	defaultSessionStore = config.SessionStorePostgres

	shutdownTimeout = 5 * time.Second
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the TaskVault HTTP API server",
		Long: `Start the HTTP API server. Serves registration, login, and
owner-scoped task routes, plus a separate metrics/health listener.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile, cmd.Flags())
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg, cmd)
		},
	}

	cmd.Flags().String("listen-addr", defaultListenAddr, "HTTP API listen address")
	cmd.Flags().String("metrics-addr", defaultMetricsAddr, "metrics/health HTTP address (empty = disabled)")
	cmd.Flags().String("database-url", "", "PostgreSQL connection URL (or set in config file)")
	cmd.Flags().String("log-format", defaultLogFormat, "log format (json or text)")
	cmd.Flags().Duration("session-ttl", 0, "session lifetime (0 = sessions never expire)")
	cmd.Flags().String("session-store", defaultSessionStore, "session store backend (postgres or memory)")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config, cmd *cobra.Command) error {
	logging.SetDefault("taskvault", version, cfg.LogFormat)

	slog.Info("starting server",
		"listen_addr", cfg.ListenAddr,
		"session_store", cfg.SessionStore,
		"log_format", cfg.LogFormat,
	)

	pool, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	slog.Info("connected to database")

	userRepo := authpostgres.NewUserRepository(pool)
	taskRepo := taskpostgres.NewTaskRepository(pool)

	var sessionRepo auth.SessionRepository
	if cfg.SessionStore == config.SessionStoreMemory {
		sessionRepo = authmemory.NewSessionStore()
	} else {
		sessionRepo = authpostgres.NewSessionRepository(pool)
	}

	var authOpts []auth.ServiceOption
	if cfg.SessionTTL > 0 {
		authOpts = append(authOpts, auth.WithSessionTTL(cfg.SessionTTL))
	}
	authSvc := auth.NewService(userRepo, sessionRepo, auth.NewArgon2idHasher(), authOpts...)
	taskSvc := task.NewService(taskRepo)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Observability listener is optional; readiness follows the database.
	var obsServer *observability.Server
	serverOpts := []httpapi.Option{}
	if cfg.MetricsAddr != "" {
		obsServer = observability.NewServer(cfg.MetricsAddr, func() bool {
			pingCtx, pingCancel := context.WithTimeout(context.Background(), time.Second)
			defer pingCancel()
			return pool.Ping(pingCtx) == nil
		})
		obsErrChan, obsErr := obsServer.Start()
		if obsErr != nil {
			return obsErr
		}
		go monitorServerErrors(ctx, cancel, obsErrChan, "observability")
		serverOpts = append(serverOpts, httpapi.WithMetrics(obsServer.Metrics()))
	}

	apiServer := httpapi.NewServer(authSvc, taskSvc, slog.Default(), serverOpts...)

	listener, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		return oops.Code("LISTEN_FAILED").With("addr", cfg.ListenAddr).Wrap(err)
	}

	httpServer := &http.Server{
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		if serveErr := httpServer.Serve(listener); serveErr != nil && serveErr != http.ErrServerClosed {
			errChan <- serveErr
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	cmd.Println("TaskVault server started")
	slog.Info("server ready", "addr", listener.Addr().String())

	select {
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig)
	case serveErr := <-errChan:
		return oops.Code("SERVE_FAILED").Wrap(serveErr)
	case <-ctx.Done():
		slog.Info("context cancelled, shutting down")
	}

	slog.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Warn("error stopping API server", "error", err)
	}
	if obsServer != nil {
		if err := obsServer.Stop(shutdownCtx); err != nil {
			slog.Warn("error stopping observability server", "error", err)
		}
	}

	slog.Info("shutdown complete")
	return nil
}

// monitorServerErrors watches a server's error channel and cancels the
// context on error, so an auxiliary listener failure shuts the whole
// process down. Exits on error, channel close, or context cancel.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, serverName string) {
	select {
	case err, ok := <-errCh:
		if !ok {
			return
		}
		if err != nil {
			slog.Error("server error, triggering shutdown",
				"server", serverName,
				"error", err,
			)
			cancel()
		}
	case <-ctx.Done():
	}
}
