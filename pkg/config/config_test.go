package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, PixProviderSimulated, cfg.Pix.Provider)
	assert.Equal(t, 30*time.Minute, cfg.Pix.ChargeTTL)
	assert.Equal(t, 10*time.Second, cfg.Pix.RequestTimeout)
	assert.Equal(t, int64(100), cfg.Pix.MinAmount)
	assert.Equal(t, int64(100_000_000), cfg.Pix.MaxAmount)
	assert.Equal(t, 7, cfg.Reconcile.MaxAgeDays)
	assert.Equal(t, ReceiptsBackendLocal, cfg.Receipts.Backend)
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("PIX_PROVIDER", "HTTP")
	t.Setenv("PIX_PROVIDER_URL", "https://psp.example.com/")
	t.Setenv("PIX_CHARGE_TTL", "15m")
	t.Setenv("PIX_REQUEST_TIMEOUT", "not-a-duration")
	t.Setenv("ALLOWED_ORIGINS", "https://app.igreja.org, ,https://admin.igreja.org")
	t.Setenv("RECONCILE_MAX_AGE_DAYS", "0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, PixProviderHTTP, cfg.Pix.Provider)
	assert.Equal(t, "https://psp.example.com", cfg.Pix.ProviderURL)
	assert.Equal(t, 15*time.Minute, cfg.Pix.ChargeTTL)
	assert.Equal(t, 10*time.Second, cfg.Pix.RequestTimeout)
	assert.Equal(t, []string{"https://app.igreja.org", "https://admin.igreja.org"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 7, cfg.Reconcile.MaxAgeDays)
}

func TestUnsignedWebhooksAllowed(t *testing.T) {
	cases := []struct {
		name   string
		env    string
		secret string
		allow  bool
		want   bool
	}{
		{name: "dev opt-in without secret", env: EnvDevelopment, allow: true, want: true},
		{name: "dev without opt-in", env: EnvDevelopment},
		{name: "secret configured", env: EnvDevelopment, secret: "whsec", allow: true},
		{name: "production never", env: EnvProduction, allow: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &Config{Env: tc.env, Pix: PixConfig{WebhookSecret: tc.secret, AllowUnsigned: tc.allow}}
			assert.Equal(t, tc.want, cfg.UnsignedWebhooksAllowed())
		})
	}
}
