package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/martinortega/abarrote-pos/api/controllers"
	"github.com/martinortega/abarrote-pos/api/handlers"
	"github.com/martinortega/abarrote-pos/api/middleware"
	"github.com/martinortega/abarrote-pos/internal/cart"
	"github.com/martinortega/abarrote-pos/internal/promo"
	"github.com/martinortega/abarrote-pos/internal/settle"
	"github.com/martinortega/abarrote-pos/internal/syncd"
	"github.com/martinortega/abarrote-pos/internal/syncqueue"
	"github.com/martinortega/abarrote-pos/pkg/config"
	"github.com/martinortega/abarrote-pos/pkg/logger"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config  *config.Config
	Logger  *logger.Logger
	Engine  *cart.Engine
	Settler *settle.Service
	Catalog *promo.Catalog
	Queue   *syncqueue.Store
	Daemon  *syncd.Daemon
	Remote  handlers.Pinger
	Cache   handlers.Pinger
}

func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID(deps.Logger))
	r.Use(middleware.Logging(deps.Logger, deps.Config.Store.TerminalID))
	r.Use(middleware.Recoverer(deps.Logger))

	r.Get("/healthz", handlers.Healthz(deps.Logger, deps.Remote, deps.Cache))

	cartCtl := controllers.NewCartController(deps.Engine, deps.Logger)
	checkoutCtl := controllers.NewCheckoutController(deps.Settler, deps.Logger)
	promoCtl := controllers.NewPromotionsController(deps.Catalog, deps.Logger)
	syncCtl := controllers.NewSyncController(deps.Queue, deps.Daemon, deps.Logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(deps.Config.JWT, deps.Config.Store, deps.Logger))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartCtl.List)
			r.Post("/lines", cartCtl.AddLine)
			r.Patch("/lines/{lineID}", cartCtl.UpdateLine)
			r.Delete("/lines/{lineID}", cartCtl.RemoveLine)
			r.Post("/clear", cartCtl.Clear)
		})

		r.Post("/checkout", checkoutCtl.Checkout)

		r.Route("/promotions", func(r chi.Router) {
			r.Get("/", promoCtl.List)
			r.With(middleware.RequireManager(deps.Logger)).Post("/reload", promoCtl.Reload)
		})

		r.Route("/sync", func(r chi.Router) {
			r.Get("/status", syncCtl.Status)
			r.Post("/drain", syncCtl.Drain)
		})
	})

	return r
}
