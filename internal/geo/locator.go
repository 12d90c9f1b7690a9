package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"
)

const defaultCountry = "IN"

// Locator resolves the caller's country from an IP geolocation service.
// Any failure is absorbed: lookups are best-effort and default to "IN",
// matching the storefront's primary market.
type Locator struct {
	baseURL string
	client  *http.Client

	mu       sync.Mutex
	cached   string
	cachedAt time.Time
	cacheTTL time.Duration
}

func NewLocator(baseURL string) *Locator {
	return &Locator{
		baseURL:  baseURL,
		client:   &http.Client{Timeout: 5 * time.Second},
		cacheTTL: 10 * time.Minute,
	}
}

// Country returns the detected country code. Results are cached for a short
// TTL so one flaky lookup does not dominate checkout latency.
func (l *Locator) Country(ctx context.Context) string {
	l.mu.Lock()
	if l.cached != "" && time.Since(l.cachedAt) < l.cacheTTL {
		c := l.cached
		l.mu.Unlock()
		return c
	}
	l.mu.Unlock()

	country, err := l.lookup(ctx)
	if err != nil {
		log.Printf("[geo] lookup failed, defaulting to %s: %v", defaultCountry, err)
		return defaultCountry
	}

	l.mu.Lock()
	l.cached = country
	l.cachedAt = time.Now()
	l.mu.Unlock()

	return country
}

func (l *Locator) lookup(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.baseURL+"/json/", nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("geo request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("geo service returned %d", resp.StatusCode)
	}

	var body struct {
		CountryCode string `json:"country_code"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode geo response: %w", err)
	}
	if body.CountryCode == "" {
		return "", fmt.Errorf("geo response missing country_code")
	}

	return body.CountryCode, nil
}
