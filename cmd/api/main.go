package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/travelia-app/travelia-backend/api/routes"
	"github.com/travelia-app/travelia-backend/internal/cart"
	checkoutsvc "github.com/travelia-app/travelia-backend/internal/checkout"
	"github.com/travelia-app/travelia-backend/internal/catalog"
	"github.com/travelia-app/travelia-backend/internal/notify"
	"github.com/travelia-app/travelia-backend/internal/transactions"
	"github.com/travelia-app/travelia-backend/pkg/config"
	"github.com/travelia-app/travelia-backend/pkg/logger"
	"github.com/travelia-app/travelia-backend/pkg/metrics"
	"github.com/travelia-app/travelia-backend/pkg/redis"
	"github.com/travelia-app/travelia-backend/pkg/travel"
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

	travelClient, err := travel.NewClient(cfg.Travel, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to build travel client", err)
		os.Exit(1)
	}

	cartService, err := cart.NewService(cart.ServiceParams{
		API:      travelClient,
		Store:    redisClient,
		StateTTL: cfg.Proof.SessionTTL,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	notifier, err := notify.NewService(redisClient, logg, 0)
	if err != nil {
		logg.Error(context.Background(), "failed to create notification service", err)
		os.Exit(1)
	}

	checkoutService, err := checkoutsvc.NewService(checkoutsvc.ServiceParams{
		API:      travelClient,
		Cart:     cartService,
		Locks:    redisClient,
		Notifier: notifier,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	transactionsService, err := transactions.NewService(transactions.ServiceParams{
		API:            travelClient,
		Notifier:       notifier,
		MaxUploadBytes: cfg.Proof.MaxUploadBytes,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create transactions service", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(travelClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Params{
			Config:         cfg,
			Logger:         logg,
			Redis:          redisClient,
			RoleResolver:   travelClient,
			Catalog:        catalogService,
			Cart:           cartService,
			Checkout:       checkoutService,
			Transactions:   transactionsService,
			Notifier:       notifier,
			HTTPMetrics:    httpMetrics,
			MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
