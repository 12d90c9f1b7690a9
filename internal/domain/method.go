package domain

type Provider string

const (
	ProviderPayU   Provider = "payu"
	ProviderPayPal Provider = "paypal"
	ProviderCOD    Provider = "cod"
)

type MethodType string

const (
	MethodDomestic      MethodType = "domestic"
	MethodInternational MethodType = "international"
)

// Fee is the pricing formula of a payment method: amount*Percent/100 + Fixed.
type Fee struct {
	Percent float64 `json:"percent"`
	Fixed   float64 `json:"fixed"`
}

// PaymentMethod is a static descriptor of one way to pay. The catalog is
// defined in code and never persisted.
type PaymentMethod struct {
	ID                  string     `json:"id"`
	Name                string     `json:"name"`
	Type                MethodType `json:"type"`
	Provider            Provider   `json:"provider"`
	SupportedCurrencies []string   `json:"supported_currencies"`
	Fees                Fee        `json:"fees"`
	ProcessingTime      string     `json:"processing_time"`
	Enabled             bool       `json:"enabled"`
}

// SupportsCurrency reports whether the method accepts the given ISO code.
func (m PaymentMethod) SupportsCurrency(currency string) bool {
	for _, c := range m.SupportedCurrencies {
		if c == currency {
			return true
		}
	}
	return false
}
