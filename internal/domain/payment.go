package domain

type PaymentStatus string

const (
	StatusInitiated PaymentStatus = "initiated"
	StatusPending   PaymentStatus = "pending"
	StatusCompleted PaymentStatus = "completed"
	StatusFailed    PaymentStatus = "failed"
	StatusCancelled PaymentStatus = "cancelled"
)

// ShippingAddress is the delivery destination captured at checkout.
type ShippingAddress struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// PaymentRequest is the transient value object built per checkout attempt.
// Only its logged projection is persisted.
type PaymentRequest struct {
	OrderID         string            `json:"order_id"`
	Amount          float64           `json:"amount"`
	Currency        string            `json:"currency"`
	CustomerName    string            `json:"customer_name"`
	CustomerEmail   string            `json:"customer_email"`
	CustomerPhone   string            `json:"customer_phone"`
	CustomerCountry string            `json:"customer_country"`
	ProductInfo     string            `json:"product_info"`
	Shipping        ShippingAddress   `json:"shipping"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

// PaymentResult is the terminal value of a payment attempt. Orchestration
// never surfaces an error to the caller; failures arrive here with
// Success=false and Error set.
type PaymentResult struct {
	Success       bool              `json:"success"`
	TransactionID string            `json:"transaction_id,omitempty"`
	MethodID      string            `json:"method_id"`
	Amount        float64           `json:"amount"`
	Currency      string            `json:"currency"`
	Status        PaymentStatus     `json:"status"`
	RedirectURL   string            `json:"redirect_url,omitempty"`
	Error         string            `json:"error,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}
