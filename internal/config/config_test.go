package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DEFAULT_CURRENCY", "MXN")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("SESSION_CART_TTL", "90m")
	t.Setenv("SMTP_PORT", "not-a-number")

	cfg := Load()
	assert.True(t, cfg.Development())
	assert.Equal(t, "mxn", cfg.DefaultCurrency)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 90*time.Minute, cfg.SessionCartTTL)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.Equal(t, "dev-secret", cfg.JWTSecret)
	require.NoError(t, cfg.Validate())
}

func TestValidateProduction(t *testing.T) {
	cfg := Config{Env: "production", DatabaseURL: "postgres://x", SessionCartBackend: "memory", EventsBackend: "none"}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STRIPE_SECRET_KEY")
	assert.Contains(t, err.Error(), "JWT_SECRET")

	cfg.StripeSecretKey, cfg.StripeWebhookSecret, cfg.JWTSecret = "sk", "whsec", "s"
	assert.NoError(t, cfg.Validate())

	cfg.EventsBackend = "nats"
	assert.Error(t, cfg.Validate())
}
