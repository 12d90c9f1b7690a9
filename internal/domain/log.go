package domain

import "time"

// PaymentLog is the persisted projection of a payment attempt. A row is
// created when the attempt starts and updated as it resolves. Status is a
// plain string column; progression initiated -> (completed|failed) is a
// convention enforced by the orchestrator, not the schema.
type PaymentLog struct {
	ID              string        `json:"id"`
	OrderID         string        `json:"order_id"`
	MethodID        string        `json:"method_id"`
	Amount          float64       `json:"amount"`
	Currency        string        `json:"currency"`
	CustomerEmail   string        `json:"customer_email"`
	CustomerCountry string        `json:"customer_country"`
	Status          PaymentStatus `json:"status"`
	TransactionID   string        `json:"transaction_id,omitempty"`
	ErrorMessage    string        `json:"error_message,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

type PayPalAction string

const (
	ActionOrderCreated    PayPalAction = "order_created"
	ActionPaymentCaptured PayPalAction = "payment_captured"
	ActionCaptureDenied   PayPalAction = "capture_denied"
	ActionOrderApproved   PayPalAction = "order_approved"
	ActionOrderCancelled  PayPalAction = "order_cancelled"
)

// PayPalTransaction is one row of the append-only PayPal audit trail, one per
// lifecycle event.
type PayPalTransaction struct {
	ID            string       `json:"id"`
	OrderID       string       `json:"order_id"`
	PayPalOrderID string       `json:"paypal_order_id"`
	Action        PayPalAction `json:"action"`
	Amount        float64      `json:"amount"`
	Currency      string       `json:"currency"`
	CaptureID     string       `json:"capture_id,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
}
