package router

import (
	"net/http"

	"storefront/internal/handler"
	"storefront/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers mounted by New.
type Handlers struct {
	Health       *handler.HealthHandler
	Product      *handler.ProductHandler
	Checkout     *handler.CheckoutHandler
	Payment      *handler.PaymentHandler
	Cart         *handler.CartHandler
	Order        *handler.OrderHandler
	Notification *handler.NotificationHandler
}

// Auth carries the credentials checked by the route groups.
type Auth struct {
	APIKey    string
	JWTSecret string
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, auth Auth, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Recovery -> RequestID -> Logging -> CORS, auth is applied per group
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.RequestID)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS)

	r.Get("/health", h.Health.Health)
	r.Get("/ready", h.Health.Ready)

	r.Route("/api", func(r chi.Router) {
		r.Get("/products", h.Product.GetAll)
		r.Get("/products/{id}", h.Product.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(middleware.JWTAuth(auth.JWTSecret, logger))

			r.Post("/checkout", h.Checkout.Checkout)
			r.Post("/payments/verify", h.Payment.Verify)
			r.Get("/payments/history", h.Payment.History)
			r.Get("/cart", h.Cart.Get)
			r.Put("/cart", h.Cart.Sync)
			r.Get("/orders", h.Order.ListMine)
			r.Get("/orders/{id}", h.Order.GetMine)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.APIKeyAuth(auth.APIKey, logger))

			r.Get("/orders", h.Order.List)
			r.Get("/orders/{id}", h.Order.Get)
			r.Patch("/orders/{id}/status", h.Order.UpdateStatus)
			r.Get("/transactions", h.Payment.AllTransactions)
			r.Get("/notifications", h.Notification.List)
			r.Post("/notifications/read", h.Notification.MarkAllRead)
			r.Post("/notifications/{id}/read", h.Notification.MarkRead)
		})
	})

	return r
}
