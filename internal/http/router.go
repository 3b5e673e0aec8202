package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Handlers struct {
	Products *ProductHandler
	Carts    *CartHandler
	Checkout *CheckoutHandler
	Orders   *OrdersHandler
	Viewers  ViewerResolver
}

// NewRouter wires the public catalog routes and the authenticated cart,
// checkout and order routes. The returned handler is wrapped for tracing.
func NewRouter(h Handlers, requestTimeout time.Duration) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", h.Products.ListProducts)
		r.Get("/products/{product_id}", h.Products.GetProduct)
		r.Get("/products/{product_id}/inquiry", h.Products.Inquiry)
		r.Get("/categories", h.Products.ListCategories)
		r.Get("/delivery-options", h.Products.DeliveryOptions)

		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(h.Viewers))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", h.Carts.GetCart)
				r.Delete("/", h.Carts.ClearCart)
				r.Post("/items", h.Carts.AddItem)
				r.Put("/items/{product_id}", h.Carts.UpdateQuantity)
				r.Delete("/items/{product_id}", h.Carts.RemoveItem)
			})

			r.Route("/checkout/sessions", func(r chi.Router) {
				r.Post("/", h.Checkout.Start)
				r.Route("/{checkout_id}", func(r chi.Router) {
					r.Get("/", h.Checkout.Summary)
					r.Put("/form", h.Checkout.UpdateContact)
					r.Put("/country", h.Checkout.SelectCountry)
					r.Put("/state", h.Checkout.SelectState)
					r.Put("/delivery", h.Checkout.SelectDelivery)
					r.Delete("/items/{product_id}", h.Checkout.RemoveItem)
					r.Post("/proceed", h.Checkout.Proceed)
					r.Post("/paystack", h.Checkout.StartPaystack)
					r.Post("/paystack/callback", h.Checkout.PaystackCallback)
					r.Post("/bank-transfer", h.Checkout.StartBankTransfer)
					r.Post("/bank-transfer/confirm", h.Checkout.ConfirmBankTransfer)
				})
			})

			r.Get("/orders", h.Orders.ListOrders)
			r.Get("/orders/{order_id}", h.Orders.GetOrder)

			r.With(AdminOnly).Patch("/admin/orders/{order_id}", h.Orders.UpdateStatus)
		})
	})

	return otelhttp.NewHandler(r, "storefront",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}))
}
