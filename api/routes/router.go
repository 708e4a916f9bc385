package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/foresttrail/trailops/api/controllers"
	"github.com/foresttrail/trailops/api/middleware"
	"github.com/foresttrail/trailops/internal/inventory"
	"github.com/foresttrail/trailops/internal/transfers"
	"github.com/foresttrail/trailops/pkg/config"
	"github.com/foresttrail/trailops/pkg/logger"
	"github.com/foresttrail/trailops/pkg/metrics"
	"github.com/foresttrail/trailops/pkg/redis"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config           *config.Config
	Logger           *logger.Logger
	Transfers        transfers.Service
	Inventory        inventory.Service
	IdempotencyStore redis.IdempotencyStore
	Gatherer         prometheus.Gatherer
	HTTPMetrics      *metrics.HTTPMetrics
	Ready            []controllers.Dependency
}

func NewRouter(d Deps) http.Handler {
	cfg, logg := d.Config, d.Logger
	var idempotencyTTL time.Duration
	if cfg != nil {
		idempotencyTTL = cfg.Transfers.IdempotencyTTL
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(d.HTTPMetrics),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, d.Ready...))
	})

	if d.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Actor(logg))
		r.Use(middleware.Idempotency(d.IdempotencyStore, idempotencyTTL, logg))

		r.Route("/transfers", func(r chi.Router) {
			r.Post("/", controllers.TransferCreate(d.Transfers, logg))
			r.Get("/", controllers.TransferList(d.Transfers, logg))
			r.Route("/{transferId}", func(r chi.Router) {
				r.Get("/", controllers.TransferDetail(d.Transfers, logg))
				r.Put("/lines", controllers.TransferUpdateLines(d.Transfers, logg))
				r.Post("/status", controllers.TransferTransition(d.Transfers, logg))
				r.Get("/movements", controllers.TransferMovements(d.Transfers, logg))
			})
		})
		r.Get("/stock/{locationId}/{itemId}", controllers.StockLevel(d.Inventory, logg))
		r.Get("/locations/{locationId}/movements", controllers.LocationMovements(d.Inventory, logg))
	})

	return r
}
