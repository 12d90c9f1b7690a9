package config

import (
	"fmt"
	"os"

	_ "github.com/joho/godotenv/autoload"
)

// PayU holds the merchant credentials for the PayU gateway. The salt never
// leaves this process; request hashes are computed server-side only.
type PayU struct {
	MerchantKey string
	Salt        string
	BaseURL     string
}

// PayPal holds the REST credentials for the PayPal gateway.
type PayPal struct {
	ClientID string
	Secret   string
	BaseURL  string
}

// Config is the validated configuration for the payments service, loaded once
// at startup and passed to components explicitly.
type Config struct {
	Port   string
	DBPath string

	PayU   PayU
	PayPal PayPal

	GeoBaseURL string
	QRBaseURL  string
}

// Load reads configuration from the environment (a .env file is honoured via
// godotenv autoload) and validates required fields.
func Load() (*Config, error) {
	cfg := &Config{
		Port:   getenv("PORT", "8080"),
		DBPath: getenv("DB_PATH", "payments.db"),
		PayU: PayU{
			MerchantKey: os.Getenv("PAYU_MERCHANT_KEY"),
			Salt:        os.Getenv("PAYU_SALT"),
			BaseURL:     getenv("PAYU_BASE_URL", "https://test.payu.in"),
		},
		PayPal: PayPal{
			ClientID: os.Getenv("PAYPAL_CLIENT_ID"),
			Secret:   os.Getenv("PAYPAL_SECRET"),
			BaseURL:  getenv("PAYPAL_BASE_URL", "https://api-m.sandbox.paypal.com"),
		},
		GeoBaseURL: getenv("GEO_BASE_URL", "https://ipapi.co"),
		QRBaseURL:  getenv("QR_BASE_URL", "https://api.qrserver.com"),
	}

	if cfg.PayU.MerchantKey == "" || cfg.PayU.Salt == "" {
		return nil, fmt.Errorf("PAYU_MERCHANT_KEY and PAYU_SALT are required")
	}
	if cfg.PayPal.ClientID == "" || cfg.PayPal.Secret == "" {
		return nil, fmt.Errorf("PAYPAL_CLIENT_ID and PAYPAL_SECRET are required")
	}

	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
