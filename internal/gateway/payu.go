package gateway

import (
	"context"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/bookhaven/payments/internal/config"
	"github.com/bookhaven/payments/internal/domain"
)

// vpaPattern matches a UPI virtual payment address like name@bank.
var vpaPattern = regexp.MustCompile(`^[a-zA-Z0-9.\-_]{2,}@[a-zA-Z]{2,}$`)

// PayUGateway drives PayU's hosted checkout for cards and builds UPI deep
// links. The request hash is computed here, inside the trusted boundary; the
// merchant salt is never exposed to clients.
type PayUGateway struct {
	cfg    config.PayU
	qrBase string
	client *http.Client
}

func NewPayUGateway(cfg config.PayU, qrBase string) *PayUGateway {
	return &PayUGateway{
		cfg:    cfg,
		qrBase: qrBase,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

func (g *PayUGateway) Name() domain.Provider {
	return domain.ProviderPayU
}

func (g *PayUGateway) CreatePayment(ctx context.Context, req *domain.PaymentRequest, methodID string) (*domain.PaymentResult, error) {
	switch methodID {
	case "payu_upi":
		return g.createUPIPayment(req)
	case "payu_card":
		return g.createCardPayment(req)
	default:
		return nil, fmt.Errorf("payu: unsupported method %q", methodID)
	}
}

// createCardPayment builds the field set for PayU's hosted checkout. The
// storefront posts these fields to {base}/_payment and the buyer completes
// payment on PayU's page.
func (g *PayUGateway) createCardPayment(req *domain.PaymentRequest) (*domain.PaymentResult, error) {
	txnID := "PAYU_" + req.OrderID
	amount := fmt.Sprintf("%.2f", req.Amount)

	fields := map[string]string{
		"key":         g.cfg.MerchantKey,
		"txnid":       txnID,
		"amount":      amount,
		"productinfo": req.ProductInfo,
		"firstname":   req.CustomerName,
		"email":       req.CustomerEmail,
		"phone":       req.CustomerPhone,
		"surl":        req.Metadata["success_url"],
		"furl":        req.Metadata["failure_url"],
	}
	fields["hash"] = g.requestHash(txnID, amount, req.ProductInfo, req.CustomerName, req.CustomerEmail)

	return &domain.PaymentResult{
		Success:       true,
		TransactionID: txnID,
		MethodID:      "payu_card",
		Amount:        req.Amount,
		Currency:      req.Currency,
		Status:        domain.StatusPending,
		RedirectURL:   g.cfg.BaseURL + "/_payment",
		Metadata:      fields,
	}, nil
}

// createUPIPayment builds a upi:// deep link plus a scannable QR image URL.
func (g *PayUGateway) createUPIPayment(req *domain.PaymentRequest) (*domain.PaymentResult, error) {
	vpa := req.Metadata["vpa"]
	if !vpaPattern.MatchString(vpa) {
		return nil, fmt.Errorf("payu: invalid UPI id %q", vpa)
	}

	txnID := "UPI_" + req.OrderID

	params := url.Values{}
	params.Set("pa", vpa)
	params.Set("pn", "BookHaven")
	params.Set("am", fmt.Sprintf("%.2f", req.Amount))
	params.Set("cu", "INR")
	params.Set("tn", "Order "+req.OrderID)
	upiLink := "upi://pay?" + params.Encode()

	qrURL := fmt.Sprintf("%s/v1/create-qr-code/?size=250x250&data=%s",
		g.qrBase, url.QueryEscape(upiLink))

	return &domain.PaymentResult{
		Success:       true,
		TransactionID: txnID,
		MethodID:      "payu_upi",
		Amount:        req.Amount,
		Currency:      req.Currency,
		Status:        domain.StatusPending,
		Metadata: map[string]string{
			"upi_link": upiLink,
			"qr_url":   qrURL,
		},
	}, nil
}

// VerifyPayment queries PayU for the real status of a transaction via the
// merchant post-service API.
func (g *PayUGateway) VerifyPayment(ctx context.Context, txnID string) (domain.PaymentStatus, error) {
	cmd := "verify_payment"
	hash := sha512Hex(strings.Join([]string{g.cfg.MerchantKey, cmd, txnID, g.cfg.Salt}, "|"))

	form := url.Values{}
	form.Set("key", g.cfg.MerchantKey)
	form.Set("command", cmd)
	form.Set("var1", txnID)
	form.Set("hash", hash)

	endpoint := g.cfg.BaseURL + "/merchant/postservice?form=2"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("verify request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("payu verify returned %d: %s", resp.StatusCode, body)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read verify response: %w", err)
	}

	// PayU reports per-transaction status inside a JSON envelope; the exact
	// shape varies by merchant settings, so match on the status token.
	switch {
	case strings.Contains(string(body), `"status":"success"`):
		return domain.StatusCompleted, nil
	case strings.Contains(string(body), `"status":"failure"`):
		return domain.StatusFailed, nil
	default:
		return domain.StatusPending, nil
	}
}

// requestHash computes PayU's payment request hash:
// sha512(key|txnid|amount|productinfo|firstname|email|udf1..5||||||salt).
func (g *PayUGateway) requestHash(txnID, amount, productInfo, firstName, email string) string {
	parts := []string{
		g.cfg.MerchantKey, txnID, amount, productInfo, firstName, email,
		"", "", "", "", "", // udf1..udf5, unused
		"", "", "", "", "",
		g.cfg.Salt,
	}
	return sha512Hex(strings.Join(parts, "|"))
}

func sha512Hex(s string) string {
	sum := sha512.Sum512([]byte(s))
	return hex.EncodeToString(sum[:])
}
