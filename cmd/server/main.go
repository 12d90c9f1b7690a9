package main

import (
	"log"
	"net/http"

	"github.com/bookhaven/payments/internal/api"
	"github.com/bookhaven/payments/internal/config"
	"github.com/bookhaven/payments/internal/domain"
	"github.com/bookhaven/payments/internal/fraud"
	"github.com/bookhaven/payments/internal/gateway"
	"github.com/bookhaven/payments/internal/geo"
	"github.com/bookhaven/payments/internal/orchestrator"
	"github.com/bookhaven/payments/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	log.Printf("Initializing database at %s", cfg.DBPath)
	db, err := repository.InitDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to init DB: %v", err)
	}
	defer db.Close()

	// Create repositories.
	logRepo := repository.NewPaymentLogRepo(db)
	paypalRepo := repository.NewPayPalTxnRepo(db)

	// Create gateways.
	payu := gateway.NewPayUGateway(cfg.PayU, cfg.QRBaseURL)
	paypal := gateway.NewPayPalGateway(cfg.PayPal, paypalRepo)
	cod := gateway.NewCODGateway()

	gateways := map[domain.Provider]gateway.Gateway{
		domain.ProviderPayU:   payu,
		domain.ProviderPayPal: paypal,
		domain.ProviderCOD:    cod,
	}

	// Create services.
	locator := geo.NewLocator(cfg.GeoBaseURL)
	checker := fraud.NewChecker(logRepo)
	orch := orchestrator.New(gateways, logRepo, checker, locator, orchestrator.DefaultRetryPolicy)

	// Create router.
	router := api.NewRouter(orch, logRepo, paypalRepo, paypal, locator)

	log.Printf("BookHaven Payments Service")
	log.Printf("Listening on http://localhost:%s", cfg.Port)
	log.Printf("API base: http://localhost:%s/api/v1", cfg.Port)
	log.Printf("")
	log.Printf("Endpoints:")
	log.Printf("  POST   /api/v1/payments")
	log.Printf("  GET    /api/v1/payments")
	log.Printf("  GET    /api/v1/payments/methods")
	log.Printf("  GET    /api/v1/payments/{orderID}")
	log.Printf("  POST   /api/v1/payments/{orderID}/capture")
	log.Printf("  POST   /api/v1/webhooks/paypal")
	log.Printf("  GET    /api/v1/dashboard")

	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
