package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookhaven/payments/internal/config"
	"github.com/bookhaven/payments/internal/domain"
	"github.com/bookhaven/payments/internal/fraud"
	"github.com/bookhaven/payments/internal/gateway"
	"github.com/bookhaven/payments/internal/geo"
	"github.com/bookhaven/payments/internal/orchestrator"
	"github.com/bookhaven/payments/internal/repository"
)

type fixture struct {
	server     *httptest.Server
	logRepo    *repository.PaymentLogRepo
	paypalRepo *repository.PayPalTxnRepo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := repository.InitDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logRepo := repository.NewPaymentLogRepo(db)
	paypalRepo := repository.NewPayPalTxnRepo(db)

	// External services are stubbed with a dead endpoint; the tests below
	// only exercise flows that never reach them.
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(dead.Close)

	payu := gateway.NewPayUGateway(config.PayU{
		MerchantKey: "mkey", Salt: "salt", BaseURL: dead.URL,
	}, "https://api.qrserver.com")
	paypal := gateway.NewPayPalGateway(config.PayPal{
		ClientID: "cid", Secret: "sec", BaseURL: dead.URL,
	}, paypalRepo)

	gateways := map[domain.Provider]gateway.Gateway{
		domain.ProviderPayU:   payu,
		domain.ProviderPayPal: paypal,
		domain.ProviderCOD:    gateway.NewCODGateway(),
	}

	locator := geo.NewLocator(dead.URL) // always falls back to IN
	checker := fraud.NewChecker(logRepo)
	orch := orchestrator.New(gateways, logRepo, checker, locator,
		orchestrator.RetryPolicy{MaxRetries: 3, BaseDelay: time.Millisecond})

	router := NewRouter(orch, logRepo, paypalRepo, paypal, locator)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &fixture{server: srv, logRepo: logRepo, paypalRepo: paypalRepo}
}

func (f *fixture) postJSON(t *testing.T, path, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(f.server.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func (f *fixture) getJSON(t *testing.T, path string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Get(f.server.URL + path)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

const codPayment = `{
	"method_id": "cod",
	"request": {
		"order_id": "ORD-1",
		"amount": 999,
		"currency": "INR",
		"customer_name": "Asha",
		"customer_email": "asha@example.com",
		"customer_country": "IN"
	}
}`

func TestProcessPaymentCOD(t *testing.T) {
	f := newFixture(t)

	resp, body := f.postJSON(t, "/api/v1/payments", codPayment)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "pending", body["status"])
	assert.Equal(t, "COD_ORD-1", body["transaction_id"])

	// The attempt was logged and resolved.
	logEntry, err := f.logRepo.GetByOrderID("ORD-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, logEntry.Status)
}

func TestProcessPaymentValidation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing order id", `{"method_id":"cod","request":{"amount":1,"currency":"INR","customer_email":"a@b.com"}}`},
		{"zero amount", `{"method_id":"cod","request":{"order_id":"O","currency":"INR","customer_email":"a@b.com"}}`},
		{"missing method", `{"request":{"order_id":"O","amount":1,"currency":"INR","customer_email":"a@b.com"}}`},
		{"garbage body", `{]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := f.postJSON(t, "/api/v1/payments", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestProcessPaymentFraudBlocked(t *testing.T) {
	f := newFixture(t)

	resp, body := f.postJSON(t, "/api/v1/payments", `{
		"method_id": "cod",
		"request": {
			"order_id": "ORD-F",
			"amount": 60000,
			"currency": "INR",
			"customer_email": "buyer@tempmail.com",
			"customer_country": "IN"
		}
	}`)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "failed", body["status"])
}

func TestListMethods(t *testing.T) {
	f := newFixture(t)

	resp, body := f.getJSON(t, "/api/v1/payments/methods?location=IN&currency=INR&amount=999")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var ids []string
	for _, m := range body["methods"].([]any) {
		ids = append(ids, m.(map[string]any)["id"].(string))
	}
	assert.Contains(t, ids, "cod")
	assert.NotContains(t, ids, "paypal")

	quotes := body["quotes"].([]any)
	assert.Len(t, quotes, len(ids))
}

func TestListMethodsDefaultsToDetectedCountry(t *testing.T) {
	f := newFixture(t)

	// The stub geo service fails, so detection defaults to IN.
	_, body := f.getJSON(t, "/api/v1/payments/methods")
	assert.Equal(t, "IN", body["location"])
	assert.Equal(t, "INR", body["currency"])
}

func TestGetPayment(t *testing.T) {
	f := newFixture(t)
	f.postJSON(t, "/api/v1/payments", codPayment)

	resp, body := f.getJSON(t, "/api/v1/payments/ORD-1")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	payment := body["payment"].(map[string]any)
	assert.Equal(t, "cod", payment["method_id"])

	resp, _ = f.getJSON(t, "/api/v1/payments/NOPE")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPayPalWebhookUpdatesPayment(t *testing.T) {
	f := newFixture(t)
	f.postJSON(t, "/api/v1/payments", strings.Replace(codPayment, "ORD-1", "ORD-P", 1))

	// Seed the audit trail as order creation would have.
	require.NoError(t, f.paypalRepo.Insert(&domain.PayPalTransaction{
		ID:            "row-1",
		OrderID:       "ORD-P",
		PayPalOrderID: "PP-77",
		Action:        domain.ActionOrderCreated,
		Amount:        12,
		Currency:      "USD",
		CreatedAt:     time.Now().UTC().Add(-time.Minute),
	}))

	resp, body := f.postJSON(t, "/api/v1/webhooks/paypal", `{
		"id": "WH-2",
		"event_type": "PAYMENT.CAPTURE.COMPLETED",
		"resource": {
			"id": "CAP-1",
			"amount": {"currency_code": "USD", "value": "12.00"},
			"supplementary_data": {"related_ids": {"order_id": "PP-77"}}
		}
	}`)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "processed", body["status"])
	assert.Equal(t, "ORD-P", body["order_id"])

	logEntry, err := f.logRepo.GetByOrderID("ORD-P")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, logEntry.Status)
}

func TestPayPalWebhookIgnoresUnknownEvent(t *testing.T) {
	f := newFixture(t)

	resp, body := f.postJSON(t, "/api/v1/webhooks/paypal", `{"event_type":"BILLING.PLAN.CREATED","resource":{}}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ignored", body["status"])
}

func TestDashboard(t *testing.T) {
	f := newFixture(t)
	f.postJSON(t, "/api/v1/payments", codPayment)

	resp, body := f.getJSON(t, "/api/v1/dashboard")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	payments := body["payments"].(map[string]any)
	assert.Equal(t, float64(1), payments["total"])
	assert.Equal(t, float64(1), payments["pending"])

	byMethod := body["by_method"].([]any)
	require.Len(t, byMethod, 1)
	assert.Equal(t, "cod", byMethod[0].(map[string]any)["method_id"])
}

func TestListPayments(t *testing.T) {
	f := newFixture(t)
	f.postJSON(t, "/api/v1/payments", codPayment)
	f.postJSON(t, "/api/v1/payments", strings.Replace(codPayment, "ORD-1", "ORD-2", 1))

	resp, body := f.getJSON(t, "/api/v1/payments?method=cod")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), body["total"])
}
