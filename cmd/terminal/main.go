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
	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/gaspos-terminal/api/controllers"
	"github.com/angelmondragon/gaspos-terminal/api/routes"
	"github.com/angelmondragon/gaspos-terminal/internal/assets"
	"github.com/angelmondragon/gaspos-terminal/internal/cart"
	"github.com/angelmondragon/gaspos-terminal/internal/catalog"
	checkoutsvc "github.com/angelmondragon/gaspos-terminal/internal/checkout"
	"github.com/angelmondragon/gaspos-terminal/internal/cron"
	"github.com/angelmondragon/gaspos-terminal/internal/drafts"
	"github.com/angelmondragon/gaspos-terminal/internal/sales"
	"github.com/angelmondragon/gaspos-terminal/internal/salesync"
	"github.com/angelmondragon/gaspos-terminal/internal/session"
	"github.com/angelmondragon/gaspos-terminal/pkg/backend"
	"github.com/angelmondragon/gaspos-terminal/pkg/config"
	"github.com/angelmondragon/gaspos-terminal/pkg/db"
	"github.com/angelmondragon/gaspos-terminal/pkg/logger"
	"github.com/angelmondragon/gaspos-terminal/pkg/metrics"
	"github.com/angelmondragon/gaspos-terminal/pkg/migrate"
	pkgredis "github.com/angelmondragon/gaspos-terminal/pkg/redis"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "terminal"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "terminal",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
		Fields:      map[string]any{"terminal_id": cfg.Terminal.ID},
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "terminal stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithField(ctx, "env", cfg.App.Env)

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "error closing database", err)
		}
	}()

	if err := migrate.MaybeRun(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	var (
		redisClient *pkgredis.Client
		cachePinger controllers.Pinger
		idempotency pkgredis.IdempotencyStore
	)
	if cfg.Redis.Enabled() {
		redisClient, err = pkgredis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return err
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(ctx, "error closing redis", err)
			}
		}()
		cachePinger = redisClient
		idempotency = redisClient
	} else {
		logg.Info(ctx, "redis not configured; idempotency replay and shared sync lock disabled")
	}

	backendClient, err := backend.NewClient(cfg.Backend.BaseURL,
		backend.WithToken(cfg.Backend.Token),
		backend.WithTimeout(cfg.Backend.Timeout),
		backend.WithHealthPath(cfg.Backend.HealthPath),
	)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	syncMetrics := metrics.NewSyncMetrics(registry)
	jobMetrics := metrics.NewJobMetrics(registry)

	carts := cart.NewRegistry()

	queue, err := sales.NewQueue(ctx, sales.NewRepository(dbClient.DB()), sales.WithInvoicePrefix(cfg.Terminal.ID))
	if err != nil {
		return err
	}

	draftSvc, err := drafts.NewService(dbClient, drafts.NewRepository(dbClient.DB()), cfg.Drafts.TTL, time.Now)
	if err != nil {
		return err
	}

	catalogSvc, err := catalog.NewService(backendClient, catalog.NewRepository(dbClient.DB()), logg, time.Now)
	if err != nil {
		return err
	}
	if rules, err := catalogSvc.TaxRules(ctx); err != nil {
		logg.Warn(logg.WithField(ctx, "error", err.Error()), "tax rules unavailable at startup")
	} else {
		carts.SetTaxRules(rules)
	}

	var syncLock salesync.Lock
	if redisClient != nil {
		lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey(cfg.Sync.LockKey), cfg.Sync.LockTTL)
		if err != nil {
			return err
		}
		syncLock = lock
	}

	coordinator, err := salesync.NewCoordinator(salesync.Params{
		Queue:         queue,
		Submitter:     backendClient,
		Logger:        logg,
		Metrics:       syncMetrics,
		Lock:          syncLock,
		RatePerSecond: cfg.Sync.SubmitRatePerSecond,
		Burst:         cfg.Sync.SubmitBurst,
		Interval:      cfg.Sync.Interval,
	})
	if err != nil {
		return err
	}
	monitor := salesync.NewConnectivityMonitor(backendClient, cfg.Sync.ProbeInterval, func() {
		coordinator.Trigger("online")
	}, logg)

	checkout, err := checkoutsvc.NewService(carts, queue, coordinator, logg)
	if err != nil {
		return err
	}

	jobs := cron.NewRegistry()
	sweep, err := cron.NewDraftSweepJob(logg, draftSvc)
	if err != nil {
		return err
	}
	if err := jobs.Register(sweep); err != nil {
		return err
	}
	refresh, err := cron.NewCatalogRefreshJob(cron.CatalogRefreshJobParams{
		Logger:  logg,
		Catalog: catalogSvc,
		Carts:   carts,
		Every:   cfg.Catalog.RefreshInterval,
	})
	if err != nil {
		return err
	}
	if err := jobs.Register(refresh); err != nil {
		return err
	}
	maintenance, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: jobs,
		Metrics:  jobMetrics,
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		return err
	}

	manifest, err := assets.LoadManifest(cfg.Assets.ManifestPath)
	if err != nil {
		return err
	}
	assetManager, err := assets.NewManager(assets.Params{
		Origin:       cfg.Assets.Origin,
		CacheName:    cfg.Assets.CacheName,
		CacheVersion: cfg.Assets.CacheVersion,
		AuthPaths:    cfg.Assets.AuthPathList(),
		Manifest:     manifest,
		Repository:   assets.NewRepository(dbClient.DB()),
		Logger:       logg,
	})
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr: ":" + cfg.App.Port,
		Handler: routes.NewRouter(routes.Deps{
			Config:      cfg,
			Logger:      logg,
			Store:       dbClient,
			Cache:       cachePinger,
			Gatherer:    registry,
			Resolver:    session.NewResolver(cfg.Terminal, cfg.Auth),
			Idempotency: idempotency,
			Carts:       carts,
			Checkout:    checkout,
			Sales:       queue,
			Drafts:      draftSvc,
			Catalog:     catalogSvc,
			Sync:        coordinator,
			Monitor:     monitor,
			Assets:      assetManager,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	group, gctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		// a failed install writes nothing and skips activation, so the cache
		// from the last good install keeps serving
		if err := assetManager.Install(gctx); err != nil {
			logg.Warn(logg.WithField(gctx, "error", err.Error()), "asset precache failed")
			return nil
		}
		if err := assetManager.Activate(gctx); err != nil {
			logg.Warn(logg.WithField(gctx, "error", err.Error()), "asset cache activation failed")
		}
		return nil
	})
	group.Go(func() error { return coordinator.Run(gctx) })
	group.Go(func() error { return monitor.Run(gctx) })
	group.Go(func() error { return maintenance.Run(gctx) })
	group.Go(func() error {
		logg.Info(logg.WithField(gctx, "addr", server.Addr), "starting terminal api")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	err = group.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	logg.Info(ctx, "terminal shutting down gracefully")
	return err
}
