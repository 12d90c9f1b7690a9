package gateway

import (
	"context"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookhaven/payments/internal/config"
	"github.com/bookhaven/payments/internal/domain"
)

func payuTestConfig(baseURL string) config.PayU {
	return config.PayU{
		MerchantKey: "mkey",
		Salt:        "s3cret",
		BaseURL:     baseURL,
	}
}

func payuRequest() *domain.PaymentRequest {
	return &domain.PaymentRequest{
		OrderID:       "ORD-42",
		Amount:        1499.5,
		Currency:      "INR",
		CustomerName:  "Asha",
		CustomerEmail: "asha@example.com",
		CustomerPhone: "9999999999",
		ProductInfo:   "3 books",
		Metadata: map[string]string{
			"success_url": "https://shop.example.com/payment/success",
			"failure_url": "https://shop.example.com/payment/failure",
		},
	}
}

func TestCardPaymentFields(t *testing.T) {
	g := NewPayUGateway(payuTestConfig("https://test.payu.in"), "https://api.qrserver.com")

	result, err := g.CreatePayment(context.Background(), payuRequest(), "payu_card")
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPending, result.Status)
	assert.Equal(t, "PAYU_ORD-42", result.TransactionID)
	assert.Equal(t, "https://test.payu.in/_payment", result.RedirectURL)

	fields := result.Metadata
	assert.Equal(t, "mkey", fields["key"])
	assert.Equal(t, "1499.50", fields["amount"])
	assert.Equal(t, "https://shop.example.com/payment/success", fields["surl"])

	// Recompute the hash with the documented field order.
	raw := strings.Join([]string{
		"mkey", "PAYU_ORD-42", "1499.50", "3 books", "Asha", "asha@example.com",
		"", "", "", "", "", "", "", "", "", "", "s3cret",
	}, "|")
	sum := sha512.Sum512([]byte(raw))
	assert.Equal(t, hex.EncodeToString(sum[:]), fields["hash"])
}

func TestUPIPayment(t *testing.T) {
	g := NewPayUGateway(payuTestConfig("https://test.payu.in"), "https://api.qrserver.com")

	req := payuRequest()
	req.Metadata["vpa"] = "asha@okhdfc"

	result, err := g.CreatePayment(context.Background(), req, "payu_upi")
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPending, result.Status)
	assert.Contains(t, result.Metadata["upi_link"], "upi://pay?")
	assert.Contains(t, result.Metadata["upi_link"], "pa=asha%40okhdfc")
	assert.Contains(t, result.Metadata["qr_url"], "https://api.qrserver.com/v1/create-qr-code/")
}

func TestUPIPaymentRejectsBadVPA(t *testing.T) {
	g := NewPayUGateway(payuTestConfig("https://test.payu.in"), "https://api.qrserver.com")

	for _, vpa := range []string{"", "no-at-sign", "a@1", "@bank"} {
		req := payuRequest()
		req.Metadata["vpa"] = vpa
		_, err := g.CreatePayment(context.Background(), req, "payu_upi")
		assert.Error(t, err, "vpa %q should be rejected", vpa)
	}
}

func TestUnsupportedMethod(t *testing.T) {
	g := NewPayUGateway(payuTestConfig("https://test.payu.in"), "https://api.qrserver.com")
	_, err := g.CreatePayment(context.Background(), payuRequest(), "paypal")
	assert.Error(t, err)
}

func TestVerifyPayment(t *testing.T) {
	var gotForm map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = map[string]string{
			"key":     r.FormValue("key"),
			"command": r.FormValue("command"),
			"var1":    r.FormValue("var1"),
			"hash":    r.FormValue("hash"),
		}
		fmt.Fprint(w, `{"transaction_details":{"PAYU_ORD-42":{"status":"success"}}}`)
	}))
	defer srv.Close()

	g := NewPayUGateway(payuTestConfig(srv.URL), "https://api.qrserver.com")

	status, err := g.VerifyPayment(context.Background(), "PAYU_ORD-42")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, status)

	assert.Equal(t, "mkey", gotForm["key"])
	assert.Equal(t, "verify_payment", gotForm["command"])
	assert.Equal(t, "PAYU_ORD-42", gotForm["var1"])

	sum := sha512.Sum512([]byte("mkey|verify_payment|PAYU_ORD-42|s3cret"))
	assert.Equal(t, hex.EncodeToString(sum[:]), gotForm["hash"])
}

func TestVerifyPaymentFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"transaction_details":{"PAYU_ORD-42":{"status":"failure"}}}`)
	}))
	defer srv.Close()

	g := NewPayUGateway(payuTestConfig(srv.URL), "https://api.qrserver.com")

	status, err := g.VerifyPayment(context.Background(), "PAYU_ORD-42")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, status)
}
