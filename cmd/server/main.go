package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "sitesmith/internal/adapters/http"
	"sitesmith/internal/bootstrap"
	"sitesmith/internal/config"
	"sitesmith/internal/logger"
	"sitesmith/internal/workers/refresher"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil && !errors.Is(err, config.ErrNoDatabaseURL) {
		log.Fatalf("config: %v", err)
	}

	lg, lerr := logger.New(cfg.LogLevel, cfg.Env == "development")
	if lerr != nil {
		log.Fatalf("logger: %v", lerr)
	}
	if err != nil {
		lg.Error("DATABASE_URL is required for the postgres store; set STORE_DRIVER=memory for local runs")
	} else if err = run(cfg, lg); err != nil {
		lg.Error("server exited", logger.Error(err))
	}
	_ = lg.Sync()
	if err != nil {
		os.Exit(1)
	}
}

// run serves until a signal arrives or the listener fails. Deferred cleanup
// has finished by the time it returns.
func run(cfg config.Config, lg logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, lg, nil)
	if err != nil {
		return fmt.Errorf("startup: %w", err)
	}
	defer app.Close()

	workersDone := make(chan struct{})
	go func() {
		defer close(workersDone)
		refresher.Run(ctx, app.Store, app.Forensics, refresher.Config{
			Workers:  cfg.RefreshWorkers,
			Interval: cfg.RefreshInterval,
			MaxAge:   cfg.FreshnessWindow(),
		}, lg.With(logger.String("component", "refresher")))
	}()
	if cfg.RefreshWorkers > 0 {
		lg.Info("refresh workers started", logger.Int("workers", cfg.RefreshWorkers), logger.Duration("interval", cfg.RefreshInterval))
	}

	srv := httpadapter.New(app.Forensics, app.Industries, app.Templates, app.MetricsHandler(), lg)
	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.ExtractionTimeout + 30*time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpServer.ListenAndServe() }()
	lg.Info("listening", logger.String("addr", cfg.ListenAddr), logger.String("store", cfg.StoreDriver))

	var serveErr error
	select {
	case <-ctx.Done():
		lg.Info("shutting down")
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr = fmt.Errorf("serve: %w", err)
		}
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		lg.Warn("http shutdown", logger.Error(err))
	}
	<-workersDone
	return serveErr
}
