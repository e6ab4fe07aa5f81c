package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/travelia-app/travelia-backend/api/controllers"
	"github.com/travelia-app/travelia-backend/api/middleware"
	"github.com/travelia-app/travelia-backend/internal/cart"
	checkoutsvc "github.com/travelia-app/travelia-backend/internal/checkout"
	"github.com/travelia-app/travelia-backend/internal/catalog"
	"github.com/travelia-app/travelia-backend/internal/notify"
	"github.com/travelia-app/travelia-backend/internal/transactions"
	"github.com/travelia-app/travelia-backend/pkg/config"
	"github.com/travelia-app/travelia-backend/pkg/logger"
	"github.com/travelia-app/travelia-backend/pkg/metrics"
	"github.com/travelia-app/travelia-backend/pkg/redis"
)

type Params struct {
	Config         *config.Config
	Logger         *logger.Logger
	Redis          *redis.Client
	RoleResolver   middleware.RoleResolver
	Catalog        catalog.Service
	Cart           cart.Service
	Checkout       checkoutsvc.Service
	Transactions   transactions.Service
	Notifier       notify.Service
	HTTPMetrics    *metrics.HTTPMetrics
	MetricsHandler http.Handler
}

func NewRouter(p Params) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(p.Logger),
		middleware.RequestID(p.Logger),
		middleware.Logging(p.Logger),
		middleware.Metrics(p.HTTPMetrics),
		middleware.CORS(p.Config.CORS.AllowedOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(p.Config))
		r.Get("/ready", controllers.HealthReady(p.Config, p.Logger, p.Redis))
	})

	if p.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", p.MetricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Public: the home fan-out needs only the deployment API key.
		r.Get("/home", controllers.Home(p.Catalog, p.Logger))

		r.Group(func(r chi.Router) {
			r.Use(
				middleware.Auth(p.Logger),
				middleware.Idempotency(p.Redis, p.Logger),
			)

			r.Get("/navigation", controllers.Navigation(p.RoleResolver, p.Logger))
			r.Get("/notifications", controllers.Notifications(p.Notifier, p.Logger))
			r.Get("/payment-methods", controllers.PaymentMethods(p.Cart, p.Logger))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartFetch(p.Cart, p.Logger))
				r.Post("/payment-method", controllers.CartChoosePaymentMethod(p.Cart, p.Logger))
				r.Post("/selection/toggle-all", controllers.CartToggleSelectAll(p.Cart, p.Logger))
				r.Route("/{cartID}", func(r chi.Router) {
					r.Delete("/", controllers.CartRemoveLine(p.Cart, p.Logger))
					r.Post("/quantity", controllers.CartSetQuantity(p.Cart, p.Logger))
					r.Post("/selection", controllers.CartToggleSelection(p.Cart, p.Logger))
				})
			})

			r.Post("/checkout", controllers.Checkout(p.Checkout, p.Logger))

			r.Route("/transactions", func(r chi.Router) {
				r.Get("/", controllers.MyTransactions(p.Transactions, p.Logger))
				r.Post("/{transactionID}/proof", controllers.AttachProof(p.Transactions, p.Config.Proof.MaxUploadBytes, p.Logger))
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireAdmin(p.RoleResolver, p.Logger))
				r.Get("/transactions", controllers.AdminTransactions(p.Transactions, p.Logger))
				r.Post("/transactions/{transactionID}/status", controllers.AdminUpdateTransactionStatus(p.Transactions, p.Logger))
			})
		})
	})

	return r
}
