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
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/drdonut/voicecart-backend/api/controllers"
	"github.com/drdonut/voicecart-backend/api/routes"
	"github.com/drdonut/voicecart-backend/internal/cart"
	"github.com/drdonut/voicecart-backend/internal/catalog"
	"github.com/drdonut/voicecart-backend/internal/evaluation"
	"github.com/drdonut/voicecart-backend/internal/resolver"
	"github.com/drdonut/voicecart-backend/internal/session"
	"github.com/drdonut/voicecart-backend/pkg/config"
	"github.com/drdonut/voicecart-backend/pkg/db"
	"github.com/drdonut/voicecart-backend/pkg/logger"
	"github.com/drdonut/voicecart-backend/pkg/metrics"
	"github.com/drdonut/voicecart-backend/pkg/migrate"
	"github.com/drdonut/voicecart-backend/pkg/redis"
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	menus, catalogs, err := buildCatalogs(ctx, cfg, dbClient, logg)
	if err != nil {
		logg.Error(ctx, "failed to build menu catalogs", err)
		os.Exit(1)
	}

	activeCatalog, ok := catalogs[cfg.Menu.Name]
	if !ok {
		logg.Error(ctx, "configured menu is not available", errors.New(cfg.Menu.Name))
		os.Exit(1)
	}

	var redisClient *redis.Client
	var snapshotter session.Snapshotter
	readyChecks := map[string]controllers.Pinger{"database": dbClient}
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		snapshotter = redisClient
		readyChecks["redis"] = redisClient
	}

	promRegistry := prometheus.NewRegistry()
	cartMetrics := metrics.NewCartMetrics(promRegistry)

	res := resolver.New(activeCatalog, cfg.Resolver.MinConfidence)
	registry := session.NewRegistry(cfg.Session, func() *cart.Engine {
		return cart.NewEngine(activeCatalog, res, cart.Options{
			ModifyBinding: cart.ModifyBinding(cfg.Resolver.ModifyBinding),
			Metrics:       cartMetrics,
		})
	}, snapshotter, cartMetrics, logg)
	registry.StartSweeper(ctx)

	handler := routes.NewRouter(cfg, logg, routes.Deps{
		Registry: registry,
		Catalogs: catalogs,
		Menus:    menus,
		EvalOpts: evaluation.Options{
			Parallelism:   cfg.Eval.Parallelism,
			MinConfidence: cfg.Resolver.MinConfidence,
			ModifyBinding: cart.ModifyBinding(cfg.Resolver.ModifyBinding),
			Metrics:       cartMetrics,
		},
		ReadyChecks:    readyChecks,
		MetricsHandler: promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{}),
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
		"menu": cfg.Menu.Name,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "server shutdown failed", err)
			os.Exit(1)
		}
		logg.Info(context.Background(), "api server stopped")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	}
}

// buildCatalogs prepares the served menus: built-ins by default, optionally
// seeded into and then read back from the database.
func buildCatalogs(ctx context.Context, cfg *config.Config, dbClient *db.Client, logg *logger.Logger) ([]catalog.Menu, map[string]*catalog.Catalog, error) {
	menus := catalog.BuiltInMenus()

	if cfg.Menu.SeedDatabase {
		repo := catalog.NewRepository(dbClient.DB())
		if err := repo.SeedBuiltIn(ctx); err != nil {
			return nil, nil, err
		}
		logg.Info(ctx, "seeded built-in menus")
	}

	if cfg.Menu.LoadFromDB {
		repo := catalog.NewRepository(dbClient.DB())
		loaded := make([]catalog.Menu, 0, len(menus))
		for _, m := range menus {
			stored, err := repo.LoadMenu(ctx, m.Name)
			if err != nil {
				return nil, nil, err
			}
			loaded = append(loaded, stored)
		}
		menus = loaded
	}

	catalogs := make(map[string]*catalog.Catalog, len(menus))
	for _, m := range menus {
		cat, err := catalog.New(m)
		if err != nil {
			return nil, nil, err
		}
		catalogs[m.Name] = cat
	}
	return menus, catalogs, nil
}
