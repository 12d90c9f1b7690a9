package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/bookhaven/payments/internal/gateway"
	"github.com/bookhaven/payments/internal/geo"
	"github.com/bookhaven/payments/internal/orchestrator"
	"github.com/bookhaven/payments/internal/repository"
)

// NewRouter creates the Chi router with all API routes mounted.
func NewRouter(
	orch *orchestrator.Orchestrator,
	logRepo *repository.PaymentLogRepo,
	paypalRepo *repository.PayPalTxnRepo,
	paypal *gateway.PayPalGateway,
	locator *geo.Locator,
) http.Handler {
	h := &Handlers{
		orch:       orch,
		logRepo:    logRepo,
		paypalRepo: paypalRepo,
		paypal:     paypal,
		locator:    locator,
	}

	r := chi.NewRouter()

	// Middleware.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.SetHeader("Content-Type", "application/json"))

	r.Route("/api/v1", func(r chi.Router) {
		// Payments.
		r.Post("/payments", h.ProcessPayment)
		r.Get("/payments", h.ListPayments)
		r.Get("/payments/methods", h.ListMethods)
		r.Get("/payments/{orderID}", h.GetPayment)
		r.Post("/payments/{orderID}/capture", h.CapturePayPal)

		// Webhooks (server-only boundary).
		r.Post("/webhooks/paypal", h.PayPalWebhook)

		// Dashboard.
		r.Get("/dashboard", h.GetDashboard)
	})

	return r
}
