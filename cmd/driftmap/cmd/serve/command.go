// Package serve provides the HTTP server command for the driftmap CLI.
package serve

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentstation/driftmap/cmd/application"
	"github.com/agentstation/driftmap/internal/cmd/emoji"
	"github.com/agentstation/driftmap/internal/server"
	"github.com/agentstation/driftmap/pkg/constants"
)

// NewCommand creates the serve command. defaults seeds the flag defaults
// from the loaded configuration.
func NewCommand(app application.Application, defaults server.Config) *cobra.Command {
	cfg := defaults

	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"server"},
		GroupID: "core",
		Short:   "Start the REST API server",
		Long: `Start the REST API server for resolutions.

Endpoints (under the path prefix, /api/v1 by default):
  GET    /health                        liveness
  GET    /ready                         backend readiness
  GET    /resolutions/{type}            one page of buckets and statistics
  GET    /resolutions/{type}/properties changed properties
  GET    /rules/{type}                  exception rule snapshot
  POST   /parse                         parse a change log
  GET    /cache, DELETE /cache          response cache stats and reset
  GET    /metrics                       Prometheus metrics (at the root)`,
		Example: `  driftmap serve
  driftmap serve --port 3000 --cache-ttl 0
  driftmap serve --cors-origins "https://example.com,https://app.example.com"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cmd, app, cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.Host, "host", cfg.Host, "Bind address")
	cmd.Flags().IntVar(&cfg.Port, "port", cfg.Port, "Server port")
	cmd.Flags().StringVar(&cfg.PathPrefix, "prefix", cfg.PathPrefix, "API path prefix")
	cmd.Flags().BoolVar(&cfg.CORSEnabled, "cors", cfg.CORSEnabled, "Enable CORS for all origins")
	cmd.Flags().StringSliceVar(&cfg.CORSOrigins, "cors-origins", cfg.CORSOrigins, "Allowed CORS origins (comma-separated)")
	cmd.Flags().DurationVar(&cfg.CacheTTL, "cache-ttl", cfg.CacheTTL, "Response cache TTL (0 disables)")
	cmd.Flags().DurationVar(&cfg.RequestTimeout, "request-timeout", cfg.RequestTimeout, "Per-request resolution timeout")
	cmd.Flags().DurationVar(&cfg.ReadTimeout, "read-timeout", cfg.ReadTimeout, "HTTP read timeout")
	cmd.Flags().DurationVar(&cfg.WriteTimeout, "write-timeout", cfg.WriteTimeout, "HTTP write timeout")
	cmd.Flags().DurationVar(&cfg.IdleTimeout, "idle-timeout", cfg.IdleTimeout, "HTTP idle timeout")
	cmd.Flags().BoolVar(&cfg.MetricsEnabled, "metrics", cfg.MetricsEnabled, "Enable the /metrics endpoint")

	return cmd
}

func run(ctx context.Context, cmd *cobra.Command, app application.Application, cfg server.Config) error {
	if len(cfg.CORSOrigins) > 0 {
		cfg.CORSEnabled = true
	}
	logger := app.Logger()

	// Open the backend now so configuration errors surface before listening.
	if _, err := app.Engine(ctx); err != nil {
		return err
	}

	srv, err := server.New(app, cfg)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	httpServer := srv.HTTPServer()

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", httpServer.Addr).
			Str("prefix", cfg.PathPrefix).
			Bool("cors", cfg.CORSEnabled).
			Dur("cache_ttl", cfg.CacheTTL).
			Msg("Starting API server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	cmd.PrintErrf("\n%s Shutting down server...\n", emoji.Warning)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()

	start := time.Now()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info().Dur("took", time.Since(start)).Msg("Server stopped")
	return nil
}
