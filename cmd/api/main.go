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

	"github.com/martinortega/abarrote-pos/api/routes"
	"github.com/martinortega/abarrote-pos/internal/cart"
	"github.com/martinortega/abarrote-pos/internal/products"
	"github.com/martinortega/abarrote-pos/internal/promo"
	"github.com/martinortega/abarrote-pos/internal/settle"
	"github.com/martinortega/abarrote-pos/internal/syncd"
	"github.com/martinortega/abarrote-pos/internal/syncqueue"
	"github.com/martinortega/abarrote-pos/internal/tax"
	"github.com/martinortega/abarrote-pos/pkg/config"
	"github.com/martinortega/abarrote-pos/pkg/db"
	"github.com/martinortega/abarrote-pos/pkg/logger"
	"github.com/martinortega/abarrote-pos/pkg/metrics"
	"github.com/martinortega/abarrote-pos/pkg/migrate"
	"github.com/martinortega/abarrote-pos/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":         cfg.App.Env,
		"store_id":    cfg.Store.StoreID,
		"terminal_id": cfg.Store.TerminalID,
	})

	// The pool connects lazily, so a down remote store never blocks the
	// till from opening. Repositories built on it start working as soon as
	// connectivity returns.
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
	remoteUp := dbClient.Ping(pingCtx) == nil
	cancelPing()
	if remoteUp {
		if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
			logg.Error(ctx, "failed to run dev migrations", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(ctx, "remote database unreachable, starting offline")
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Warn(ctx, "redis unavailable, promotion snapshots disabled")
		redisClient = nil
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(ctx, "error closing redis", err)
			}
		}()
	}

	promoRepo := promo.NewRepository(dbClient.DB())
	settleRepo := settle.NewRepository(dbClient)
	resolver := products.NewRepository(dbClient.DB())
	prober := syncd.NewProber(dbClient, cfg.Sync.ProbeInterval, logg)

	var snapshots promo.SnapshotStore
	var folio settle.FolioCounter
	if redisClient != nil {
		snapshots = promo.NewRedisSnapshots(redisClient, cfg.Promotions.SnapshotTTL)
		folio = redisClient
	}

	catalog := promo.NewCatalog(promoRepo, snapshots, logg)
	catalog.Load(ctx)

	engine := cart.NewEngine(cfg.Cart, catalog, resolver, promoRepo, logg)
	queue := syncqueue.NewStore(cfg.LocalDB.Path)
	settler := settle.NewService(engine, settleRepo, queue, folio, tax.FromConfig(cfg.Tax), cfg.Store, cfg.Sync, logg)

	daemon := syncd.NewDaemon(cfg.Sync, queue, settleRepo, prober, metrics.NewSyncMetrics(nil), logg)
	daemon.Start(ctx)
	defer daemon.Stop()

	var cachePinger interface {
		Ping(context.Context) error
	}
	if redisClient != nil {
		cachePinger = redisClient
	}

	router := routes.NewRouter(routes.Deps{
		Config:  cfg,
		Logger:  logg,
		Engine:  engine,
		Settler: settler,
		Catalog: catalog,
		Queue:   queue,
		Daemon:  daemon,
		Remote:  dbClient,
		Cache:   cachePinger,
	})

	server := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logg.Info(ctx, "api listening on :"+cfg.App.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			stop()
		}
	}()

	<-shutdownCtx.Done()
	logg.Info(ctx, "shutting down api")

	closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(closeCtx); err != nil {
		logg.Error(ctx, "error during shutdown", err)
	}
}
