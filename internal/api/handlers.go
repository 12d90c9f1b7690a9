package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bookhaven/payments/internal/catalog"
	"github.com/bookhaven/payments/internal/domain"
	"github.com/bookhaven/payments/internal/gateway"
	"github.com/bookhaven/payments/internal/geo"
	"github.com/bookhaven/payments/internal/orchestrator"
	"github.com/bookhaven/payments/internal/repository"
)

// Handlers groups all HTTP handler methods and their dependencies.
type Handlers struct {
	orch       *orchestrator.Orchestrator
	logRepo    *repository.PaymentLogRepo
	paypalRepo *repository.PayPalTxnRepo
	paypal     *gateway.PayPalGateway
	locator    *geo.Locator
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[api] encode error: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// --- ProcessPayment ---

type processPaymentRequest struct {
	MethodID string                `json:"method_id"`
	Request  domain.PaymentRequest `json:"request"`
}

func (h *Handlers) ProcessPayment(w http.ResponseWriter, r *http.Request) {
	var body processPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	req := body.Request
	switch {
	case req.OrderID == "":
		writeError(w, http.StatusBadRequest, "order_id is required")
		return
	case req.Amount <= 0:
		writeError(w, http.StatusBadRequest, "amount must be positive")
		return
	case req.Currency == "":
		writeError(w, http.StatusBadRequest, "currency is required")
		return
	case req.CustomerEmail == "":
		writeError(w, http.StatusBadRequest, "customer_email is required")
		return
	case body.MethodID == "":
		writeError(w, http.StatusBadRequest, "method_id is required")
		return
	}

	// The orchestrator resolves all failures into the result value, so the
	// HTTP status is 200 either way and callers read the success flag.
	result := h.orch.ProcessPayment(r.Context(), &req, body.MethodID)
	writeJSON(w, http.StatusOK, result)
}

// --- ListMethods ---

func (h *Handlers) ListMethods(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	location := q.Get("location")
	if location == "" {
		location = h.locator.Country(r.Context())
	}
	currency := q.Get("currency")
	if currency == "" {
		currency = "INR"
	}

	methods := catalog.Available(location, currency)

	resp := map[string]any{
		"location": location,
		"currency": currency,
		"methods":  methods,
	}

	// Quote fees when the caller supplies a cart amount.
	if amount := parseFloat(q.Get("amount")); amount > 0 {
		quotes := make([]catalog.FeeQuote, 0, len(methods))
		for _, m := range methods {
			quotes = append(quotes, catalog.CalculateFees(amount, m.ID))
		}
		resp["quotes"] = quotes
	}

	writeJSON(w, http.StatusOK, resp)
}

// --- GetPayment ---

func (h *Handlers) GetPayment(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")
	if orderID == "" {
		writeError(w, http.StatusBadRequest, "orderID is required")
		return
	}

	logEntry, err := h.logRepo.GetByOrderID(orderID)
	if err != nil {
		writeError(w, http.StatusNotFound, "payment not found")
		return
	}

	trail, err := h.paypalRepo.ListByOrderID(orderID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"payment":      logEntry,
		"paypal_trail": trail,
	})
}

// --- ListPayments ---

func (h *Handlers) ListPayments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.LogFilter{
		MethodID: q.Get("method"),
		Status:   q.Get("status"),
		Email:    q.Get("email"),
		Page:     parseIntDefault(q.Get("page"), 1),
		Limit:    parseIntDefault(q.Get("limit"), 50),
	}

	logs, total, err := h.logRepo.List(filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"payments": logs,
		"total":    total,
		"page":     filter.Page,
		"limit":    filter.Limit,
	})
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 {
		return def
	}
	return v
}

// --- CapturePayPal ---

type captureRequest struct {
	PayPalOrderID string `json:"paypal_order_id"`
}

func (h *Handlers) CapturePayPal(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	var body captureRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.PayPalOrderID == "" {
		writeError(w, http.StatusBadRequest, "paypal_order_id is required")
		return
	}

	result, err := h.paypal.CaptureOrder(r.Context(), orderID, body.PayPalOrderID)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	if err := h.logRepo.UpdateStatus(orderID, result.Status, result.CaptureID, ""); err != nil {
		log.Printf("[api] WARNING: capture log update failed for order %s: %v", orderID, err)
	}

	writeJSON(w, http.StatusOK, result)
}

// --- PayPalWebhook ---

func (h *Handlers) PayPalWebhook(w http.ResponseWriter, r *http.Request) {
	var event gateway.WebhookEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		writeError(w, http.StatusBadRequest, "invalid webhook payload: "+err.Error())
		return
	}

	outcome, err := h.paypal.HandleWebhook(&event)
	if err != nil {
		// Tell PayPal to redeliver later.
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if outcome == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	if err := h.logRepo.UpdateStatus(outcome.OrderID, outcome.Status, "", ""); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "processed",
		"order_id": outcome.OrderID,
	})
}

// --- GetDashboard ---

func (h *Handlers) GetDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.logRepo.GetDashboardStats()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	methodVols, err := h.logRepo.GetVolumeByMethod()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"generated_at": time.Now().UTC().Format(time.RFC3339),
		"payments": map[string]int{
			"total":     stats.Total,
			"completed": stats.Completed,
			"pending":   stats.Pending,
			"failed":    stats.Failed,
		},
		"volume": map[string]float64{
			"total":  stats.TotalVolume,
			"paid":   stats.PaidVolume,
			"failed": stats.FailedVolume,
		},
		"by_method": methodVols,
	})
}
