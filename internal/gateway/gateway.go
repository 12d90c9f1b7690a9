package gateway

import (
	"context"

	"github.com/bookhaven/payments/internal/domain"
)

// Gateway is the adapter interface for one payment provider. CreatePayment
// initiates a payment for the given catalog method id; redirect-based flows
// return a pending result carrying the redirect URL or form fields.
type Gateway interface {
	Name() domain.Provider
	CreatePayment(ctx context.Context, req *domain.PaymentRequest, methodID string) (*domain.PaymentResult, error)
}
