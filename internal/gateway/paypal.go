package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bookhaven/payments/internal/config"
	"github.com/bookhaven/payments/internal/currency"
	"github.com/bookhaven/payments/internal/domain"
	"github.com/bookhaven/payments/internal/repository"
)

// PayPalGateway wraps PayPal's REST v2 checkout API. The OAuth token cache
// lives on the struct, so each constructed gateway owns its own token state.
// Every order lifecycle event is appended to the paypal_transactions audit
// trail.
type PayPalGateway struct {
	cfg     config.PayPal
	client  *http.Client
	txnRepo *repository.PayPalTxnRepo

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

func NewPayPalGateway(cfg config.PayPal, txnRepo *repository.PayPalTxnRepo) *PayPalGateway {
	return &PayPalGateway{
		cfg:     cfg,
		client:  &http.Client{Timeout: 20 * time.Second},
		txnRepo: txnRepo,
	}
}

func (g *PayPalGateway) Name() domain.Provider {
	return domain.ProviderPayPal
}

// accessToken returns a cached OAuth2 token, fetching a fresh one via the
// client-credentials grant when the cache is empty or about to expire.
func (g *PayPalGateway) accessToken(ctx context.Context) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.token != "" && time.Now().Before(g.tokenExpiry) {
		return g.token, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		g.cfg.BaseURL+"/v1/oauth2/token",
		strings.NewReader("grant_type=client_credentials"))
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	req.SetBasicAuth(g.cfg.ClientID, g.cfg.Secret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("paypal token returned %d: %s", resp.StatusCode, body)
	}

	var body struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}

	g.token = body.AccessToken
	// Refresh a minute early so in-flight calls never carry a stale token.
	g.tokenExpiry = time.Now().Add(time.Duration(body.ExpiresIn-60) * time.Second)

	return g.token, nil
}

// CreatePayment creates a PayPal order. Cart amounts are denominated in INR
// storewide; the charge currency comes from the request and the amount is
// converted through the static rate table.
func (g *PayPalGateway) CreatePayment(ctx context.Context, req *domain.PaymentRequest, methodID string) (*domain.PaymentResult, error) {
	charged, err := currency.Convert(req.Amount, "INR", req.Currency)
	if err != nil {
		return nil, fmt.Errorf("convert amount: %w", err)
	}

	payload := map[string]any{
		"intent": "CAPTURE",
		"purchase_units": []map[string]any{{
			"reference_id": req.OrderID,
			"description":  req.ProductInfo,
			"amount": map[string]string{
				"currency_code": req.Currency,
				"value":         fmt.Sprintf("%.2f", charged),
			},
			"shipping": map[string]any{
				"address": map[string]string{
					"address_line_1": req.Shipping.Line1,
					"address_line_2": req.Shipping.Line2,
					"admin_area_2":   req.Shipping.City,
					"admin_area_1":   req.Shipping.State,
					"postal_code":    req.Shipping.PostalCode,
					"country_code":   req.Shipping.Country,
				},
			},
		}},
		"payer": map[string]any{
			"email_address": req.CustomerEmail,
			"name": map[string]string{
				"given_name": req.CustomerName,
			},
		},
	}

	var created struct {
		ID     string `json:"id"`
		Status string `json:"status"`
		Links  []struct {
			Href string `json:"href"`
			Rel  string `json:"rel"`
		} `json:"links"`
	}
	if err := g.call(ctx, http.MethodPost, "/v2/checkout/orders", payload, &created); err != nil {
		return nil, err
	}

	g.audit(req.OrderID, created.ID, domain.ActionOrderCreated, charged, req.Currency, "")

	var approveURL string
	for _, l := range created.Links {
		if l.Rel == "approve" {
			approveURL = l.Href
			break
		}
	}

	return &domain.PaymentResult{
		Success:       true,
		TransactionID: created.ID,
		MethodID:      methodID,
		Amount:        charged,
		Currency:      req.Currency,
		Status:        domain.StatusPending,
		RedirectURL:   approveURL,
	}, nil
}

// CaptureResult is the outcome of capturing an approved PayPal order.
type CaptureResult struct {
	PayPalOrderID string               `json:"paypal_order_id"`
	CaptureID     string               `json:"capture_id,omitempty"`
	Status        domain.PaymentStatus `json:"status"`
}

// CaptureOrder captures the funds of an approved order.
func (g *PayPalGateway) CaptureOrder(ctx context.Context, orderID, paypalOrderID string) (*CaptureResult, error) {
	var captured struct {
		Status        string `json:"status"`
		PurchaseUnits []struct {
			Payments struct {
				Captures []struct {
					ID     string `json:"id"`
					Status string `json:"status"`
					Amount struct {
						CurrencyCode string `json:"currency_code"`
						Value        string `json:"value"`
					} `json:"amount"`
				} `json:"captures"`
			} `json:"payments"`
		} `json:"purchase_units"`
	}

	path := "/v2/checkout/orders/" + paypalOrderID + "/capture"
	if err := g.call(ctx, http.MethodPost, path, map[string]any{}, &captured); err != nil {
		return nil, err
	}

	result := &CaptureResult{PayPalOrderID: paypalOrderID, Status: domain.StatusFailed}

	if len(captured.PurchaseUnits) > 0 && len(captured.PurchaseUnits[0].Payments.Captures) > 0 {
		capture := captured.PurchaseUnits[0].Payments.Captures[0]
		result.CaptureID = capture.ID
		amount, _ := strconv.ParseFloat(capture.Amount.Value, 64)

		if capture.Status == "COMPLETED" {
			result.Status = domain.StatusCompleted
			g.audit(orderID, paypalOrderID, domain.ActionPaymentCaptured, amount, capture.Amount.CurrencyCode, capture.ID)
		} else {
			g.audit(orderID, paypalOrderID, domain.ActionCaptureDenied, amount, capture.Amount.CurrencyCode, capture.ID)
		}
	}

	return result, nil
}

// GetOrderStatus fetches the current PayPal-side status of an order.
func (g *PayPalGateway) GetOrderStatus(ctx context.Context, paypalOrderID string) (string, error) {
	var order struct {
		Status string `json:"status"`
	}
	if err := g.call(ctx, http.MethodGet, "/v2/checkout/orders/"+paypalOrderID, nil, &order); err != nil {
		return "", err
	}
	return order.Status, nil
}

// WebhookEvent is the subset of PayPal's webhook envelope this service reads.
type WebhookEvent struct {
	ID        string `json:"id"`
	EventType string `json:"event_type"`
	Resource  struct {
		ID     string `json:"id"`
		Status string `json:"status"`
		Amount struct {
			CurrencyCode string `json:"currency_code"`
			Value        string `json:"value"`
		} `json:"amount"`
		SupplementaryData struct {
			RelatedIDs struct {
				OrderID string `json:"order_id"`
			} `json:"related_ids"`
		} `json:"supplementary_data"`
	} `json:"resource"`
}

// WebhookOutcome tells the caller which bookstore order changed and what its
// payment status is now.
type WebhookOutcome struct {
	OrderID string               `json:"order_id"`
	Status  domain.PaymentStatus `json:"status"`
}

// HandleWebhook maps a PayPal event onto the order's payment status and
// appends the audit row. Unrecognized event types are acknowledged and
// ignored.
func (g *PayPalGateway) HandleWebhook(event *WebhookEvent) (*WebhookOutcome, error) {
	paypalOrderID := event.Resource.ID
	var action domain.PayPalAction
	var status domain.PaymentStatus
	captureID := ""

	switch event.EventType {
	case "CHECKOUT.ORDER.APPROVED":
		action, status = domain.ActionOrderApproved, domain.StatusPending
	case "PAYMENT.CAPTURE.COMPLETED":
		action, status = domain.ActionPaymentCaptured, domain.StatusCompleted
		captureID = event.Resource.ID
		paypalOrderID = event.Resource.SupplementaryData.RelatedIDs.OrderID
	case "PAYMENT.CAPTURE.DENIED":
		action, status = domain.ActionCaptureDenied, domain.StatusFailed
		captureID = event.Resource.ID
		paypalOrderID = event.Resource.SupplementaryData.RelatedIDs.OrderID
	default:
		log.Printf("[paypal] ignoring webhook event type %s", event.EventType)
		return nil, nil
	}

	prior, err := g.txnRepo.GetByPayPalOrderID(paypalOrderID)
	if err != nil {
		return nil, fmt.Errorf("resolve order for paypal order %s: %w", paypalOrderID, err)
	}

	amount, _ := strconv.ParseFloat(event.Resource.Amount.Value, 64)
	eventCurrency := event.Resource.Amount.CurrencyCode
	if eventCurrency == "" {
		amount, eventCurrency = prior.Amount, prior.Currency
	}
	g.audit(prior.OrderID, paypalOrderID, action, amount, eventCurrency, captureID)

	return &WebhookOutcome{OrderID: prior.OrderID, Status: status}, nil
}

// --- helpers ---

// call performs one authenticated JSON API call against PayPal.
func (g *PayPalGateway) call(ctx context.Context, method, path string, payload, out any) error {
	token, err := g.accessToken(ctx)
	if err != nil {
		return err
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.cfg.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("paypal %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("paypal %s %s returned %d: %s", method, path, resp.StatusCode, data)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode paypal response: %w", err)
		}
	}
	return nil
}

// audit appends one lifecycle row. Audit failures are logged, not fatal: the
// payment already moved, losing the money would be worse than losing the row.
func (g *PayPalGateway) audit(orderID, paypalOrderID string, action domain.PayPalAction, amount float64, curr, captureID string) {
	if g.txnRepo == nil {
		return
	}
	err := g.txnRepo.Insert(&domain.PayPalTransaction{
		ID:            uuid.NewString(),
		OrderID:       orderID,
		PayPalOrderID: paypalOrderID,
		Action:        action,
		Amount:        amount,
		Currency:      curr,
		CaptureID:     captureID,
		CreatedAt:     time.Now().UTC(),
	})
	if err != nil {
		log.Printf("[paypal] WARNING: audit insert failed for order %s: %v", orderID, err)
	}
}
