package main

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cybershieldio/sdk/pkg/core"
	"github.com/cybershieldio/sdk/pkg/dashboard"
	"github.com/cybershieldio/sdk/pkg/health"
)

// healthChecks builds the readiness checks for the dashboard.
func (a *app) healthChecks() *health.Handler {
	opts := []health.HandlerOption{
		health.WithVersion(core.AppVersion),
		health.WithTimeout(5 * time.Second),
	}
	if a.cfg.Dashboard.HideHealthDetails {
		opts = append(opts, health.WithHideDetails())
	}
	h := health.NewHandler(opts...)
	h.Register("upstream", &health.UpstreamCheck{
		URL:  a.client.BaseURL(),
		Ping: a.client.Ping,
	})
	if a.ledger != nil {
		h.Register("archive", &health.DatabaseCheck{PingFunc: a.ledger.Ping})
	}
	h.Register("disk", &health.DiskCheck{
		Path:         filepath.Clean(a.cfg.Export.Dir),
		MinFreeBytes: a.cfg.Dashboard.MinFreeDiskMB << 20,
	})
	h.Register("memory", &health.SystemMemoryCheck{MaxUsagePercent: 95})
	return h
}

// serve runs the dashboard until ctx is cancelled.
func (a *app) serve(ctx context.Context) (err error) {
	h := a.healthChecks()

	if err := a.shell.Start(ctx); err != nil {
		a.logger.Warn("initial fetch incomplete: %v", err)
	}

	srv := dashboard.NewServer(a.shell, h, a.metrics, a.logger)
	r := chi.NewRouter()
	r.Mount("/", srv.Routes())

	httpServer := &http.Server{
		Addr:              a.cfg.Dashboard.Listen,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpServer.ListenAndServe() }()
	a.logger.Info("dashboard listening on %s", a.cfg.Dashboard.Listen)
	if a.auditor != nil {
		a.auditor.DashboardStarted(a.cfg.Dashboard.Listen)
		defer func() { a.auditor.DashboardStopped(err) }()
	}

	select {
	case <-ctx.Done():
		a.logger.Info("shutting down")
	case serveErr := <-errCh:
		if !errors.Is(serveErr, http.ErrServerClosed) {
			return serveErr
		}
		return nil
	}

	h.SetReady(false)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Dashboard.ShutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
