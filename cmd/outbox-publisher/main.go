package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/foresttrail/trailops/pkg/config"
	"github.com/foresttrail/trailops/pkg/db"
	"github.com/foresttrail/trailops/pkg/logger"
	"github.com/foresttrail/trailops/pkg/metrics"
	"github.com/foresttrail/trailops/pkg/migrate"
	"github.com/foresttrail/trailops/pkg/outbox"
	"github.com/foresttrail/trailops/pkg/outbox/idempotency"
	"github.com/foresttrail/trailops/pkg/outbox/registry"
	"github.com/foresttrail/trailops/pkg/pubsub"
	"github.com/foresttrail/trailops/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: workerName})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	cfg.Service.Kind = workerName

	logg = logger.New(logger.Options{
		ServiceName: workerName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": workerName,
	})

	if err := run(ctx, cfg, logg); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "outbox publisher stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "outbox publisher shutting down gracefully")
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) (err error) {
	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, dbClient.Close()) }()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	eventRegistry, err := registry.NewEventRegistry(cfg.PubSub)
	if err != nil {
		return err
	}
	pubsubClient, err := pubsub.NewClient(ctx, cfg.GCP, eventRegistry.Topics(), logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, pubsubClient.Close()) }()

	var guard eventGuard
	if cfg.Redis.Enabled() {
		var redisClient *redis.Client
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return err
		}
		defer func() { err = multierr.Append(err, redisClient.Close()) }()
		var g *idempotency.Guard
		g, err = idempotency.NewGuard(redisClient, cfg.Outbox.ClaimTTL)
		if err != nil {
			return err
		}
		guard = g
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	if cfg.Outbox.MetricsPort != "" {
		srv := serveMetrics(ctx, logg, reg, cfg.Outbox.MetricsPort)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			err = multierr.Append(err, srv.Shutdown(shutdownCtx))
		}()
	}

	service, err := NewService(ServiceParams{
		Config:     cfg,
		Logger:     logg,
		DB:         dbClient,
		PubSub:     pubsubClient,
		Repository: outbox.NewRepository(dbClient.DB()),
		Registry:   eventRegistry,
		Guard:      guard,
		Metrics:    metrics.NewPublisherMetrics(reg),
	})
	if err != nil {
		return err
	}

	logg.Info(ctx, "starting outbox publisher")
	return service.Run(ctx)
}

func serveMetrics(ctx context.Context, logg *logger.Logger, reg *prometheus.Registry, port string) *http.Server {
	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: ":" + port, Handler: r, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "metrics server stopped", err)
		}
	}()
	return srv
}
