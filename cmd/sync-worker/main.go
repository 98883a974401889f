package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/martinortega/abarrote-pos/internal/settle"
	"github.com/martinortega/abarrote-pos/internal/syncd"
	"github.com/martinortega/abarrote-pos/internal/syncqueue"
	"github.com/martinortega/abarrote-pos/pkg/config"
	"github.com/martinortega/abarrote-pos/pkg/db"
	"github.com/martinortega/abarrote-pos/pkg/logger"
	"github.com/martinortega/abarrote-pos/pkg/metrics"
)

// sync-worker runs the durability queue drain as a standalone process, for
// deployments where the till binary and the uploader are supervised
// separately.
func main() {
	logg := logger.New(logger.Options{ServiceName: "sync-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "sync-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":         cfg.App.Env,
		"store_id":    cfg.Store.StoreID,
		"terminal_id": cfg.Store.TerminalID,
	})

	dbClient, err := db.New(ctx, cfg.RemoteDB, logg)
	if err != nil {
		logg.Error(ctx, "invalid remote database configuration", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "error closing database", err)
		}
	}()

	pingCtx, cancelPing := context.WithTimeout(ctx, 5*time.Second)
	if dbClient.Ping(pingCtx) != nil {
		logg.Warn(ctx, "remote database unreachable, queued sales drain when it returns")
	}
	cancelPing()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	queue := syncqueue.NewStore(cfg.LocalDB.Path)
	uploader := settle.NewRepository(dbClient)
	prober := syncd.NewProber(dbClient, cfg.Sync.ProbeInterval, logg)
	daemon := syncd.NewDaemon(cfg.Sync, queue, uploader, prober, metrics.NewSyncMetrics(registry), logg)

	metricsServer := &http.Server{
		Addr:              ":" + cfg.Sync.MetricsPort,
		Handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logg.Info(ctx, "metrics listening on :"+cfg.Sync.MetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "metrics server stopped unexpectedly", err)
		}
	}()

	shutdownCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logg.Info(ctx, "starting sync worker")
	daemon.Start(shutdownCtx)

	<-shutdownCtx.Done()
	logg.Info(ctx, "sync worker shutting down gracefully")
	daemon.Stop()

	closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := metricsServer.Shutdown(closeCtx); err != nil {
		logg.Error(ctx, "error closing metrics server", err)
	}
}
