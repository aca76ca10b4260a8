package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/pricingdef/api/controllers"
	"github.com/angelmondragon/pricingdef/api/middleware"
	"github.com/angelmondragon/pricingdef/internal/definitions"
	"github.com/angelmondragon/pricingdef/internal/quote"
	"github.com/angelmondragon/pricingdef/internal/snapshots"
	"github.com/angelmondragon/pricingdef/pkg/config"
	"github.com/angelmondragon/pricingdef/pkg/db"
	"github.com/angelmondragon/pricingdef/pkg/logger"
	"github.com/angelmondragon/pricingdef/pkg/metrics"
)

// NewRouter wires every HTTP route. redisP may be nil when the cache is off.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	gatherer prometheus.Gatherer,
	quoteMetrics *metrics.QuoteMetrics,
	dbP db.Pinger,
	redisP db.Pinger,
	definitionService definitions.Service,
	selector definitions.Selector,
	quoteService quote.Service,
	snapshotService snapshots.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	checks := []controllers.ReadyCheck{{Name: "db", Pinger: dbP}}
	if redisP != nil {
		checks = append(checks, controllers.ReadyCheck{Name: "redis", Pinger: redisP})
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, checks...))
	})
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/tiers/validate", controllers.ValidateTiers(quoteMetrics, logg))

		r.Route("/priceables/{type}/{id}", func(r chi.Router) {
			r.Delete("/", controllers.DeletePriceable(definitionService, logg))
			r.Get("/definitions", controllers.ListDefinitions(definitionService, logg))
			r.Post("/definitions", controllers.CreateDefinition(definitionService, logg))
			r.Get("/definitions/current", controllers.CurrentDefinition(definitionService, selector, logg))
			r.Put("/definitions/{definitionId}", controllers.UpdateDefinition(definitionService, logg))
			r.Delete("/definitions/{definitionId}", controllers.DeleteDefinition(definitionService, logg))
		})

		r.Post("/quotes", controllers.CreateQuote(quoteService, logg))
		r.Get("/quotes/{snapshotId}", controllers.GetSnapshot(snapshotService, logg))

		r.Route("/resources/{type}/{id}", func(r chi.Router) {
			r.Delete("/", controllers.DetachResource(snapshotService, logg))
			r.Get("/quotes", controllers.ListSnapshots(snapshotService, logg))
		})
	})

	return r
}
