package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/angelmondragon/pricingdef/api/routes"
	"github.com/angelmondragon/pricingdef/internal/definitions"
	"github.com/angelmondragon/pricingdef/internal/quote"
	"github.com/angelmondragon/pricingdef/internal/setup"
	"github.com/angelmondragon/pricingdef/internal/snapshots"
	"github.com/angelmondragon/pricingdef/pkg/config"
	"github.com/angelmondragon/pricingdef/pkg/db"
	"github.com/angelmondragon/pricingdef/pkg/instance"
	"github.com/angelmondragon/pricingdef/pkg/logger"
	"github.com/angelmondragon/pricingdef/pkg/metrics"
	"github.com/angelmondragon/pricingdef/pkg/migrate"
	"github.com/angelmondragon/pricingdef/pkg/redis"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const shutdownTimeout = 15 * time.Second

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

	loc, err := cfg.Pricing.Location()
	if err != nil {
		logg.Error(context.Background(), "invalid pricing timezone", err)
		os.Exit(1)
	}

	registry, err := setup.Load(cfg.Pricing.SetupFile)
	if err != nil {
		logg.Error(logg.WithField(context.Background(), "setup_file", cfg.Pricing.SetupFile), "failed to load pricing setup", err)
		os.Exit(1)
	}

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	var (
		cache       definitions.Cache
		redisPinger db.Pinger
	)
	if cfg.Redis.Enabled() {
		redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		cache = definitions.NewRedisCache(redisClient, cfg.Pricing.DefinitionCacheTTL)
		redisPinger = redisClient
	} else {
		logg.Info(context.Background(), "redis not configured, definitions cache disabled")
	}

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	quoteMetrics := metrics.NewQuoteMetrics(promRegistry)
	selector := definitions.NewSelector(loc)

	definitionService, err := definitions.NewService(definitions.ServiceParams{
		Repo:     definitions.NewRepository(dbClient.DB()),
		Registry: registry,
		Cache:    cache,
		Metrics:  quoteMetrics,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create definitions service", err)
		os.Exit(1)
	}

	snapshotService, err := snapshots.NewService(snapshots.ServiceParams{
		Repo:   snapshots.NewRepository(dbClient.DB()),
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create snapshots service", err)
		os.Exit(1)
	}

	quoteService, err := quote.NewService(quote.ServiceParams{
		Registry:    registry,
		Definitions: definitionService,
		Snapshots:   snapshotService,
		Selector:    selector,
		Metrics:     quoteMetrics,
		Logger:      logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create quote service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":            cfg.App.Env,
		"addr":           addr,
		"instance":       instance.GetID(),
		"resource_types": registry.ResourceTypes(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			promRegistry,
			quoteMetrics,
			dbClient,
			redisPinger,
			definitionService,
			selector,
			quoteService,
			snapshotService,
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-runCtx.Done():
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
		}
	}
}
