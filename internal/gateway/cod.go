package gateway

import (
	"context"

	"github.com/bookhaven/payments/internal/domain"
)

// CODGateway settles nothing online: the order is accepted immediately and
// payment happens at delivery. No network calls are made.
type CODGateway struct{}

func NewCODGateway() *CODGateway {
	return &CODGateway{}
}

func (g *CODGateway) Name() domain.Provider {
	return domain.ProviderCOD
}

func (g *CODGateway) CreatePayment(ctx context.Context, req *domain.PaymentRequest, methodID string) (*domain.PaymentResult, error) {
	return &domain.PaymentResult{
		Success:       true,
		TransactionID: "COD_" + req.OrderID,
		MethodID:      methodID,
		Amount:        req.Amount,
		Currency:      req.Currency,
		Status:        domain.StatusPending,
	}, nil
}
