package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/drdonut/voicecart-backend/api/controllers"
	"github.com/drdonut/voicecart-backend/api/middleware"
	"github.com/drdonut/voicecart-backend/internal/catalog"
	"github.com/drdonut/voicecart-backend/internal/evaluation"
	"github.com/drdonut/voicecart-backend/internal/session"
	"github.com/drdonut/voicecart-backend/pkg/config"
	"github.com/drdonut/voicecart-backend/pkg/logger"
)

type Deps struct {
	Registry *session.Registry
	Catalogs map[string]*catalog.Catalog
	Menus    []catalog.Menu
	EvalOpts evaluation.Options

	// Readiness probes; nil entries are skipped.
	ReadyChecks map[string]controllers.Pinger

	// MetricsHandler serves the prometheus scrape endpoint when set.
	MetricsHandler http.Handler
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.ReadyChecks))
	})

	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", controllers.CreateSession(deps.Registry, logg))
			r.Route("/{sessionID}", func(r chi.Router) {
				r.Delete("/", controllers.DeleteSession(deps.Registry, logg))
				r.Post("/events", controllers.ApplyEvent(deps.Registry, logg))
				r.Get("/cart", controllers.GetCart(deps.Registry, logg))
			})
		})

		r.Get("/menus/{menuName}", controllers.GetMenu(deps.Catalogs, logg))

		if !cfg.App.IsProd() {
			r.Post("/eval/run", controllers.RunEvaluation(cfg, deps.Menus, deps.EvalOpts, logg))
		}
	})

	return r
}
