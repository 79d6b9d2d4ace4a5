package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/BorisDmv/blog-posts-api/internal/config"
	"github.com/BorisDmv/blog-posts-api/internal/logging"
	"github.com/BorisDmv/blog-posts-api/internal/server"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cfg := config.Load()

	cmd := &cobra.Command{
		Use:   "blog-posts-api",
		Short: "Serve the blog posts CRUD API",
		Long: `Serve the blog posts API on /posts.

The storage backend is picked from the database URL scheme:
  mongodb://, mongodb+srv://   MongoDB
  postgres://, postgresql://   PostgreSQL
  memory://                    in-process, not persisted

Environment Variables:
  DATABASE_URL (or MONGODB_URI)  storage connection string
  PORT                           listen port
  HOST                           listen host
  CORS_ALLOWED_ORIGINS           comma separated origins
  RATE_LIMIT_PER_MINUTE          per-IP limit, 0 disables
  LOG_LEVEL, LOG_FORMAT          zerolog level, json|console|auto`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&cfg.Port, "port", "p", cfg.Port, "port to listen on")
	cmd.Flags().StringVar(&cfg.Host, "host", cfg.Host, "host to bind to")
	cmd.Flags().StringVar(&cfg.DatabaseURL, "database-url", cfg.DatabaseURL, "storage connection string")
	cmd.Flags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")

	return cmd
}

func run(ctx context.Context, cfg config.Config) error {
	logging.SetDefault(logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr))
	logger := logging.Default()

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	startCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	srv, err := server.Start(startCtx, cfg, logger)
	cancel()
	if err != nil {
		logger.Error().Err(err).Msg("server failed to start")
		return err
	}

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-srv.Done():
		if serveErr != nil {
			logger.Error().Err(serveErr).Msg("server stopped unexpectedly")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
		if serveErr == nil {
			return fmt.Errorf("shutdown: %w", err)
		}
	}
	return serveErr
}
