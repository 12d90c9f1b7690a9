package fraud

import (
	"log"
	"strings"
	"time"

	"github.com/bookhaven/payments/internal/domain"
)

// Heuristic thresholds. These are placeholder values carried over from the
// storefront; there is no upstream risk model feeding them.
const (
	highAmountThreshold = 50000
	velocityWindow      = time.Hour
	velocityLimit       = 3
	riskCutoff          = 50
)

// deniedDomains are email domains that always add risk.
var deniedDomains = map[string]bool{
	"tempmail.com":      true,
	"guerrillamail.com": true,
	"10minutemail.com":  true,
	"mailinator.com":    true,
}

// AttemptCounter supplies the recent-transaction velocity signal, backed by
// the payment log store.
type AttemptCounter interface {
	CountRecentByEmail(email string, since time.Time) (int, error)
}

// Assessment is the outcome of a fraud check.
type Assessment struct {
	Score      int      `json:"score"`
	IsHighRisk bool     `json:"is_high_risk"`
	Reasons    []string `json:"reasons,omitempty"`
}

// Checker scores payment requests against a fixed set of heuristics.
type Checker struct {
	attempts AttemptCounter
}

func NewChecker(attempts AttemptCounter) *Checker {
	return &Checker{attempts: attempts}
}

// Check scores a request. Scoring is additive: large amounts, denylisted
// email domains, and bursts of attempts from the same email each add points,
// and the request is high-risk once the score reaches the cutoff.
func (c *Checker) Check(req *domain.PaymentRequest) Assessment {
	var a Assessment

	if req.Amount > highAmountThreshold {
		a.Score += 30
		a.Reasons = append(a.Reasons, "amount above threshold")
	}

	if deniedDomains[emailDomain(req.CustomerEmail)] {
		a.Score += 40
		a.Reasons = append(a.Reasons, "disposable email domain")
	}

	if c.attempts != nil {
		count, err := c.attempts.CountRecentByEmail(req.CustomerEmail, time.Now().Add(-velocityWindow))
		if err != nil {
			// Velocity is a secondary signal; a store error must not block checkout.
			log.Printf("[fraud] velocity lookup failed for order %s: %v", req.OrderID, err)
		} else if count > velocityLimit {
			a.Score += 30
			a.Reasons = append(a.Reasons, "transaction velocity exceeded")
		}
	}

	a.IsHighRisk = a.Score >= riskCutoff
	return a
}

func emailDomain(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return ""
	}
	return strings.ToLower(email[at+1:])
}
