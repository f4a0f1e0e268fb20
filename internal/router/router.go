// Package router wires the HTTP routes and middleware chain.
package router

import (
	"net/http"

	"biju-kart/internal/handler"
	"biju-kart/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers served by the API.
type Handlers struct {
	Product *handler.ProductHandler
	Cart    *handler.CartHandler
	Order   *handler.OrderHandler
}

// New creates a new HTTP router with all routes and middleware configured.
// Middleware runs in order: Recovery -> Logging -> CORS -> APIKeyAuth -> Session.
func New(h Handlers, apiKey string, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS)
	r.Use(middleware.APIKeyAuth(apiKey, logger, "/health"))

	// Health check endpoint (no authentication required)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Session(logger))

		r.Get("/products", h.Product.GetAll)
		r.Get("/products/{id}", h.Product.GetByID)
		r.Get("/categories", h.Product.GetCategories)
		r.Get("/categories/{slug}/products", h.Product.GetByCategory)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.Cart.Get)
			r.Delete("/", h.Cart.Clear)
			r.Post("/items", h.Cart.AddItem)
			r.Put("/items/{id}", h.Cart.UpdateItem)
			r.Delete("/items/{id}", h.Cart.RemoveItem)
			r.Post("/coupon", h.Cart.ApplyCoupon)
			r.Get("/installments", h.Cart.Installments)
		})

		r.Post("/checkout", h.Order.Checkout)
		r.Get("/orders/{id}", h.Order.GetByID)
		r.Get("/payments/{transactionId}/status", h.Order.PaymentStatus)
	})

	return r
}
