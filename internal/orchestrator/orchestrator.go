package orchestrator

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/bookhaven/payments/internal/catalog"
	"github.com/bookhaven/payments/internal/domain"
	"github.com/bookhaven/payments/internal/fraud"
	"github.com/bookhaven/payments/internal/gateway"
)

// LogStore is the slice of the payment-log repository the orchestrator needs.
type LogStore interface {
	Insert(l *domain.PaymentLog) error
	UpdateStatus(orderID string, status domain.PaymentStatus, transactionID, errMsg string) error
}

// Locator resolves the buyer's country when the request does not carry one.
type Locator interface {
	Country(ctx context.Context) string
}

// Orchestrator routes payment requests to provider gateways with bounded
// retry and cross-method fallback. Retry and fallback are separate policies
// composed by an outer loop: the retry policy re-attempts one method, the
// fallback chain moves to the next method, and attempted method ids are
// tracked so no method runs twice.
type Orchestrator struct {
	gateways map[domain.Provider]gateway.Gateway
	logs     LogStore
	fraud    *fraud.Checker
	locator  Locator
	retry    RetryPolicy
}

func New(gateways map[domain.Provider]gateway.Gateway, logs LogStore, checker *fraud.Checker, locator Locator, retry RetryPolicy) *Orchestrator {
	return &Orchestrator{
		gateways: gateways,
		logs:     logs,
		fraud:    checker,
		locator:  locator,
		retry:    retry,
	}
}

// ProcessPayment runs one checkout attempt end to end: log the attempt, gate
// on fraud, route to the chosen gateway with retries, fall back across the
// remaining methods, and log the terminal state. It never returns an error;
// all failures resolve to a PaymentResult with Success=false.
func (o *Orchestrator) ProcessPayment(ctx context.Context, req *domain.PaymentRequest, methodID string) *domain.PaymentResult {
	now := time.Now().UTC()
	if err := o.logs.Insert(&domain.PaymentLog{
		ID:              uuid.NewString(),
		OrderID:         req.OrderID,
		MethodID:        methodID,
		Amount:          req.Amount,
		Currency:        req.Currency,
		CustomerEmail:   req.CustomerEmail,
		CustomerCountry: req.CustomerCountry,
		Status:          domain.StatusInitiated,
		CreatedAt:       now,
		UpdatedAt:       now,
	}); err != nil {
		log.Printf("[orchestrator] WARNING: attempt log failed for order %s: %v", req.OrderID, err)
	}

	if assessment := o.fraud.Check(req); assessment.IsHighRisk {
		log.Printf("[orchestrator] order %s blocked: high fraud risk (score=%d, reasons=%v)",
			req.OrderID, assessment.Score, assessment.Reasons)
		return o.fail(req, methodID, "payment flagged as high risk")
	}

	location := req.CustomerCountry
	if location == "" && o.locator != nil {
		location = o.locator.Country(ctx)
	}

	failed := map[string]bool{}
	method, known := catalog.Get(methodID)
	if !known || !method.Enabled {
		log.Printf("[orchestrator] order %s: method %q unavailable, selecting fallback", req.OrderID, methodID)
		failed[methodID] = true
		var ok bool
		method, ok = catalog.FallbackFor(location, req.Currency, failed)
		if !ok {
			return o.fail(req, methodID, "no payment method available")
		}
	}

	var lastErr error
	for {
		result, err := o.attemptWithRetry(ctx, req, method)
		if err == nil {
			if uerr := o.logs.UpdateStatus(req.OrderID, result.Status, result.TransactionID, ""); uerr != nil {
				log.Printf("[orchestrator] WARNING: result log failed for order %s: %v", req.OrderID, uerr)
			}
			log.Printf("[orchestrator] order %s paid via %s (txn=%s, status=%s)",
				req.OrderID, method.ID, result.TransactionID, result.Status)
			return result
		}

		lastErr = err
		failed[method.ID] = true
		log.Printf("[orchestrator] order %s: method %s exhausted after %d attempts: %v",
			req.OrderID, method.ID, o.retry.Attempts(), err)

		next, ok := catalog.FallbackFor(location, req.Currency, failed)
		if !ok {
			break
		}
		log.Printf("[orchestrator] order %s: falling back %s -> %s", req.OrderID, method.ID, next.ID)
		method = next
	}

	return o.fail(req, methodID, fmt.Sprintf("all payment methods failed: %v", lastErr))
}

// attemptWithRetry runs one method through the retry policy. Context
// cancellation aborts the backoff wait immediately.
func (o *Orchestrator) attemptWithRetry(ctx context.Context, req *domain.PaymentRequest, method domain.PaymentMethod) (*domain.PaymentResult, error) {
	gw, ok := o.gateways[method.Provider]
	if !ok {
		return nil, fmt.Errorf("no gateway registered for provider %s", method.Provider)
	}

	var lastErr error
	for attempt := 0; attempt < o.retry.Attempts(); attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, o.retry.Delay(attempt-1)); err != nil {
				return nil, err
			}
		}

		result, err := gw.CreatePayment(ctx, req, method.ID)
		if err == nil {
			return result, nil
		}
		lastErr = err
		log.Printf("[orchestrator] order %s: %s attempt %d/%d failed: %v",
			req.OrderID, method.ID, attempt+1, o.retry.Attempts(), err)
	}
	return nil, lastErr
}

// fail records and returns the terminal failure result.
func (o *Orchestrator) fail(req *domain.PaymentRequest, methodID, reason string) *domain.PaymentResult {
	if err := o.logs.UpdateStatus(req.OrderID, domain.StatusFailed, "", reason); err != nil {
		log.Printf("[orchestrator] WARNING: failure log failed for order %s: %v", req.OrderID, err)
	}
	return &domain.PaymentResult{
		Success:  false,
		MethodID: methodID,
		Amount:   req.Amount,
		Currency: req.Currency,
		Status:   domain.StatusFailed,
		Error:    reason,
	}
}
