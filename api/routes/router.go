package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/gaspos-terminal/api/controllers"
	"github.com/angelmondragon/gaspos-terminal/api/middleware"
	"github.com/angelmondragon/gaspos-terminal/internal/cart"
	"github.com/angelmondragon/gaspos-terminal/internal/catalog"
	checkoutsvc "github.com/angelmondragon/gaspos-terminal/internal/checkout"
	"github.com/angelmondragon/gaspos-terminal/internal/drafts"
	"github.com/angelmondragon/gaspos-terminal/internal/sales"
	"github.com/angelmondragon/gaspos-terminal/internal/session"
	"github.com/angelmondragon/gaspos-terminal/pkg/config"
	"github.com/angelmondragon/gaspos-terminal/pkg/logger"
	pkgredis "github.com/angelmondragon/gaspos-terminal/pkg/redis"
)

// Deps is everything the HTTP surface is wired to. Cache, Idempotency, Monitor
// and Assets may be nil.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	Store    controllers.Pinger
	Cache    controllers.Pinger
	Gatherer prometheus.Gatherer

	Resolver    *session.Resolver
	Idempotency pkgredis.IdempotencyStore

	Carts    *cart.Registry
	Checkout checkoutsvc.Service
	Sales    sales.Queue
	Drafts   drafts.Service
	Catalog  catalog.Service
	Sync     controllers.SyncRunner
	Monitor  controllers.OnlineReporter
	Assets   controllers.AssetServer
}

func NewRouter(d Deps) http.Handler {
	cfg, logg := d.Config, d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.AllowedOrigins()),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, d.Store, d.Cache, d.Monitor, logg))
	})
	if d.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/pos", func(r chi.Router) {
		r.Use(middleware.Session(d.Resolver, logg))
		r.Use(middleware.Idempotency(d.Idempotency, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.GetCart(d.Carts, logg))
			r.Delete("/", controllers.ClearCart(d.Carts, logg))
			r.Post("/items", controllers.AddCartItem(d.Carts, logg))
			r.Patch("/items/{index}", controllers.UpdateCartItem(d.Carts, logg))
			r.Delete("/items/{index}", controllers.RemoveCartItem(d.Carts, logg))
			r.Post("/items/{index}/cash", controllers.SetCartItemFromCash(d.Carts, logg))
			r.Put("/coupon", controllers.ApplyCoupon(d.Carts, logg))
			r.Put("/discount", controllers.SetManualDiscount(d.Carts, logg))
			r.Put("/customer", controllers.SetCartCustomer(d.Carts, logg))
		})

		r.Post("/checkout", controllers.Checkout(d.Checkout, logg))

		r.Route("/sales", func(r chi.Router) {
			r.Get("/", controllers.ListSales(d.Sales, logg))
			r.Get("/{invoiceNumber}", controllers.GetSale(d.Sales, logg))
		})

		r.Route("/drafts", func(r chi.Router) {
			r.Get("/", controllers.ListDrafts(d.Drafts, logg))
			r.Post("/", controllers.SaveDraft(d.Drafts, d.Carts, logg))
			r.Delete("/", controllers.ClearDrafts(d.Drafts, logg))
			r.Post("/{draftId}/load", controllers.LoadDraft(d.Drafts, d.Carts, logg))
			r.Delete("/{draftId}", controllers.DeleteDraft(d.Drafts, logg))
		})

		r.Route("/sync", func(r chi.Router) {
			r.Get("/", controllers.SyncStatus(d.Sync, d.Monitor, d.Sales, logg))
			r.Post("/", controllers.TriggerSync(d.Sync, logg))
		})

		r.Get("/catalog/{resource}", controllers.GetCatalog(d.Catalog, logg))
	})

	if d.Assets != nil {
		r.Handle("/*", controllers.Assets(d.Assets, logg))
	}

	return r
}
