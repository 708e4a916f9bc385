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
	"go.uber.org/multierr"

	"github.com/foresttrail/trailops/api/controllers"
	"github.com/foresttrail/trailops/api/routes"
	"github.com/foresttrail/trailops/internal/catalog"
	"github.com/foresttrail/trailops/internal/inventory"
	"github.com/foresttrail/trailops/internal/transfers"
	"github.com/foresttrail/trailops/pkg/config"
	"github.com/foresttrail/trailops/pkg/db"
	"github.com/foresttrail/trailops/pkg/logger"
	"github.com/foresttrail/trailops/pkg/metrics"
	"github.com/foresttrail/trailops/pkg/migrate"
	"github.com/foresttrail/trailops/pkg/outbox"
	"github.com/foresttrail/trailops/pkg/redis"
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
	cfg.Service.Kind = "api"

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(ctx, "api stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "api shut down gracefully")
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

	ready := []controllers.Dependency{{Name: "database", Pinger: dbClient}}
	var store redis.IdempotencyStore
	if cfg.Redis.Enabled() {
		var redisClient *redis.Client
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return err
		}
		defer func() { err = multierr.Append(err, redisClient.Close()) }()
		store = redisClient
		ready = append(ready, controllers.Dependency{Name: "redis", Pinger: redisClient})
	} else {
		logg.Warn(ctx, "redis not configured, idempotency keys are ignored")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	conn := dbClient.DB()
	catalogRepo := catalog.NewRepository(conn)
	ledger := inventory.NewLedger(conn)
	movements := inventory.NewMovementLog(conn)

	codeLoc, err := cfg.Transfers.CodeLocation()
	if err != nil {
		return err
	}
	transferService, err := transfers.NewService(transfers.ServiceParams{
		TxRunner:  dbClient,
		Repo:      transfers.NewRepository(conn),
		Ledger:    ledger,
		Movements: movements,
		Catalog:   catalogRepo,
		Outbox:    outbox.NewService(outbox.NewRepository(conn), logg),
		Codes:     transfers.NewCodeGenerator(cfg.Transfers.CodePrefix, codeLoc),
		Metrics:   metrics.NewTransferMetrics(reg),
		Logger:    logg,
		MaxLines:  cfg.Transfers.MaxLines,
	})
	if err != nil {
		return err
	}
	inventoryService, err := inventory.NewService(ledger, movements, catalogRepo)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr: ":" + cfg.App.Port,
		Handler: routes.NewRouter(routes.Deps{
			Config:           cfg,
			Logger:           logg,
			Transfers:        transferService,
			Inventory:        inventoryService,
			IdempotencyStore: store,
			Gatherer:         reg,
			HTTPMetrics:      metrics.NewHTTPMetrics(reg),
			Ready:            ready,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(logg.WithField(ctx, "port", cfg.App.Port), "starting api server")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	logg.Info(ctx, "shutting down api server")
	return server.Shutdown(shutdownCtx)
}
