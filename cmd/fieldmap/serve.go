package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/fieldmap/internal/core"
	"github.com/JonMunkholm/fieldmap/internal/web"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the JSON HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				host, port, err := splitAddr(addr)
				if err != nil {
					return withCode(exitUsage, err)
				}
				a.cfg.Server.Host, a.cfg.Server.Port = host, port
			}
			return runServe(cmd.Context(), a)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address host:port; overrides SERVER_HOST and SERVER_PORT")
	return cmd
}

// runServe serves until ctx is cancelled, then drains in-flight exports and
// shuts the server down within the configured timeout.
func runServe(ctx context.Context, a *app) error {
	cfg := a.cfg
	server := web.NewServer(a.service, cfg)

	slog.Info("server configured",
		"addr", cfg.Server.Addr(),
		"schema_fields", a.schema.Len(),
		"formats", core.FormatKeys(),
		"database_configured", cfg.Database.URL != "",
		"max_sessions", cfg.Session.MaxSessions,
		"export_max_concurrent", cfg.Export.MaxConcurrent,
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.service.StartSessionReaper(gctx, core.ReaperConfig{
			IdleTTL:       cfg.Session.IdleTTL,
			CheckInterval: cfg.Session.ReapInterval,
		})
		return nil
	})

	g.Go(func() error {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if status := a.service.ExportLimiterStatus(); status.Active > 0 {
			slog.Info("waiting for exports to complete", "active", status.Active)
			if err := a.service.WaitForExports(shutdownCtx); err != nil {
				slog.Warn("exports did not complete in time", "error", err)
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
			return err
		}
		slog.Info("server stopped")
		return nil
	})

	return g.Wait()
}
