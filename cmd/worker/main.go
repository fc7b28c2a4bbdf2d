package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	"github.com/drdonut/voicecart-backend/internal/cart"
	"github.com/drdonut/voicecart-backend/internal/catalog"
	"github.com/drdonut/voicecart-backend/internal/consumers/orders"
	"github.com/drdonut/voicecart-backend/internal/resolver"
	"github.com/drdonut/voicecart-backend/internal/session"
	"github.com/drdonut/voicecart-backend/pkg/config"
	"github.com/drdonut/voicecart-backend/pkg/logger"
	"github.com/drdonut/voicecart-backend/pkg/pubsub"
	"github.com/drdonut/voicecart-backend/pkg/redis"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "order-worker"})

	_ = godotenv.Load()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "order-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	menu, err := catalog.BuiltIn(cfg.Menu.Name)
	requireResource(ctx, logg, "menu", err)
	cat, err := catalog.New(menu)
	requireResource(ctx, logg, "catalog", err)

	var snapshotter session.Snapshotter
	if cfg.Redis.Enabled() {
		redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
		requireResource(ctx, logg, "redis", err)
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(ctx, "failed to close redis client", err)
			}
		}()
		snapshotter = redisClient
	}

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	requireResource(ctx, logg, "pubsub", err)
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(ctx, "failed to close pubsub client", err)
		}
	}()

	subscription := pubsubClient.OrderEventsSubscription()
	if subscription == nil {
		requireResource(ctx, logg, "order events subscription", errors.New("subscription not configured"))
	}

	res := resolver.New(cat, cfg.Resolver.MinConfidence)
	registry := session.NewRegistry(cfg.Session, func() *cart.Engine {
		return cart.NewEngine(cat, res, cart.Options{
			ModifyBinding: cart.ModifyBinding(cfg.Resolver.ModifyBinding),
		})
	}, snapshotter, nil, logg)

	service, err := orders.NewService(subscription, registry, logg)
	requireResource(ctx, logg, "order events consumer", err)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	registry.StartSweeper(runCtx)

	runCtx = logg.WithFields(runCtx, map[string]any{
		"env":  cfg.App.Env,
		"menu": cfg.Menu.Name,
	})
	logg.Info(runCtx, "order worker ready")

	if err := service.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(runCtx, "order worker failed", err)
		os.Exit(1)
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
