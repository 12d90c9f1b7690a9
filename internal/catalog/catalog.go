package catalog

import (
	"math"

	"github.com/bookhaven/payments/internal/domain"
)

// methods is the static payment method table. Order matters: Available and
// FallbackFor preserve it, so earlier entries win ties.
var methods = []domain.PaymentMethod{
	{
		ID:                  "cod",
		Name:                "Cash on Delivery",
		Type:                domain.MethodDomestic,
		Provider:            domain.ProviderCOD,
		SupportedCurrencies: []string{"INR"},
		Fees:                domain.Fee{Percent: 0, Fixed: 40},
		ProcessingTime:      "Pay at delivery",
		Enabled:             true,
	},
	{
		ID:                  "payu_upi",
		Name:                "UPI",
		Type:                domain.MethodDomestic,
		Provider:            domain.ProviderPayU,
		SupportedCurrencies: []string{"INR"},
		Fees:                domain.Fee{Percent: 0, Fixed: 0},
		ProcessingTime:      "Instant",
		Enabled:             true,
	},
	{
		ID:                  "payu_card",
		Name:                "Credit / Debit Card",
		Type:                domain.MethodDomestic,
		Provider:            domain.ProviderPayU,
		SupportedCurrencies: []string{"INR"},
		Fees:                domain.Fee{Percent: 2.0, Fixed: 0},
		ProcessingTime:      "Instant",
		Enabled:             true,
	},
	{
		ID:                  "paypal",
		Name:                "PayPal",
		Type:                domain.MethodInternational,
		Provider:            domain.ProviderPayPal,
		SupportedCurrencies: []string{"USD", "EUR", "GBP"},
		Fees:                domain.Fee{Percent: 4.4, Fixed: 0.30},
		ProcessingTime:      "Instant",
		Enabled:             true,
	},
}

// Methods returns a copy of the full catalog, including disabled entries.
func Methods() []domain.PaymentMethod {
	out := make([]domain.PaymentMethod, len(methods))
	copy(out, methods)
	return out
}

// Get looks up a method by id. The second return is false for unknown ids.
func Get(id string) (domain.PaymentMethod, bool) {
	for _, m := range methods {
		if m.ID == id {
			return m, true
		}
	}
	return domain.PaymentMethod{}, false
}

// isDomestic buckets a buyer: Indian buyers and INR carts get domestic
// methods, everyone else gets international ones.
func isDomestic(location, currency string) bool {
	return location == "IN" || currency == "INR"
}

// Available filters the catalog for a buyer. A method is offered when it is
// enabled, its domestic/international bucket matches the buyer, and it
// supports the cart currency. Pure function over the static table; table
// order is preserved.
func Available(location, currency string) []domain.PaymentMethod {
	wantType := domain.MethodInternational
	if isDomestic(location, currency) {
		wantType = domain.MethodDomestic
	}

	var out []domain.PaymentMethod
	for _, m := range methods {
		if !m.Enabled {
			continue
		}
		if m.Type != wantType {
			continue
		}
		if !m.SupportsCurrency(currency) {
			continue
		}
		out = append(out, m)
	}
	return out
}

// FeeQuote is the priced cost of paying a given amount with a method.
type FeeQuote struct {
	MethodID string  `json:"method_id"`
	Amount   float64 `json:"amount"`
	Fees     float64 `json:"fees"`
	Total    float64 `json:"total"`
}

// CalculateFees applies the method's fee formula, rounded to 2 decimals.
// An unknown method id quotes zero fees rather than erroring.
func CalculateFees(amount float64, methodID string) FeeQuote {
	q := FeeQuote{MethodID: methodID, Amount: amount, Total: amount}

	m, ok := Get(methodID)
	if !ok {
		return q
	}

	q.Fees = round2(amount*m.Fees.Percent/100 + m.Fees.Fixed)
	q.Total = round2(amount + q.Fees)
	return q
}

// FallbackFor picks the next method to try after the given ones failed.
// Domestic buyers fall back to COD when it is still on the table; otherwise
// the first remaining available method is chosen. Returns false when the
// chain is exhausted.
func FallbackFor(location, currency string, failed map[string]bool) (domain.PaymentMethod, bool) {
	available := Available(location, currency)

	if isDomestic(location, currency) {
		for _, m := range available {
			if m.ID == "cod" && !failed[m.ID] {
				return m, true
			}
		}
	}

	for _, m := range available {
		if !failed[m.ID] {
			return m, true
		}
	}
	return domain.PaymentMethod{}, false
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
