package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/garrettladley/slackgate/internal/config"
	xredis "github.com/garrettladley/slackgate/internal/redis"
	"github.com/garrettladley/slackgate/internal/secrets"
	"github.com/garrettladley/slackgate/internal/server"
	"github.com/garrettladley/slackgate/internal/xslog"
)

const (
	keyPort        = "port"
	keyPath        = "callback_path"
	keyGracePeriod = "grace_period"

	shutdownGracePeriod = 2 * time.Second
	shutdownTimeout     = 30 * time.Second
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the event gateway",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Read()
			if err != nil {
				return fmt.Errorf("failed to read config: %w", err)
			}

			logger := xslog.NewLogger(os.Stdout, cfg.LogLevel)
			slog.SetDefault(logger)

			ctx := cmd.Context()
			if err := serve(ctx, cfg, logger); err != nil {
				logger.ErrorContext(ctx, "fatal error", xslog.Error(err))
				return err
			}
			return nil
		},
	}
}

func serve(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	var store secrets.Store
	if cfg.Redis.URL != "" {
		logger.InfoContext(ctx, "initializing Redis secret store")
		client, err := xredis.New(ctx, xredis.Config{URL: cfg.Redis.URL})
		if err != nil {
			return fmt.Errorf("failed to initialize redis client: %w", err)
		}
		defer func() {
			if err := client.Close(); err != nil {
				logger.ErrorContext(ctx, "failed to close redis client", xslog.Error(err))
			}
		}()
		store = secrets.NewRedisStore(client)
	}

	shutdownCoordinator := server.NewShutdownCoordinator(shutdownGracePeriod)

	handler, err := server.NewHandler(cfg, store, logger, server.WithShutdownCoordinator(shutdownCoordinator))
	if err != nil {
		return fmt.Errorf("failed to build handler: %w", err)
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return shutdownCoordinator.BaseContext()
		},
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.InfoContext(ctx, "starting server",
			xslog.Version(),
			slog.String(keyPort, cfg.Port),
			slog.String(keyPath, cfg.Slack.CallbackPath))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.InfoContext(ctx, "shutdown signal received, initiating graceful shutdown")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		shutdownCoordinator.InitiateShutdown(shutdownCtx)
		logger.InfoContext(ctx, "grace period complete, shutting down server",
			slog.Duration(keyGracePeriod, shutdownCoordinator.GracePeriod()))

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		logger.InfoContext(ctx, "server stopped")
		return nil
	})

	return g.Wait()
}
