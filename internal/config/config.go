package config

import (
	"os"
)

// URLs de base de l'API PayPal selon le mode
const (
	PayPalSandboxURL = "https://api-m.sandbox.paypal.com"
	PayPalLiveURL    = "https://api-m.paypal.com"
)

type PayPalConfig struct {
	ClientID  string
	Secret    string
	WebhookID string
	BaseURL   string
}

type Config struct {
	DBUrl     string
	JWTSecret string
	Env       string
	PayPal    PayPalConfig
}

// LoadConfig lit la configuration depuis l'environnement, une seule fois au
// démarrage. Le mode PayPal (sandbox ou live) est résolu ici en URL de base,
// le reste du code ne relit jamais l'environnement.
func LoadConfig() *Config {
	paypalBase := PayPalSandboxURL
	if os.Getenv("PAYPAL_MODE") == "live" {
		paypalBase = PayPalLiveURL
	}

	return &Config{
		DBUrl:     os.Getenv("DATABASE_URL"),
		JWTSecret: os.Getenv("JWT_SECRET"),
		Env:       os.Getenv("APP_ENV"),
		PayPal: PayPalConfig{
			ClientID:  os.Getenv("PAYPAL_CLIENT_ID"),
			Secret:    os.Getenv("PAYPAL_CLIENT_SECRET"),
			WebhookID: os.Getenv("PAYPAL_WEBHOOK_ID"),
			BaseURL:   paypalBase,
		},
	}
}
