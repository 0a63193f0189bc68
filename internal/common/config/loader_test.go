// internal/common/config/loader_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFromFileDefaults(t *testing.T) {
	path := writeConfigFile(t, `
app:
  name: listing-analytics
redis:
  address: "localhost:6379"
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, 15000, cfg.Server.ReadTimeout)
	assert.Equal(t, "localhost:6379", cfg.Redis.Address)
	assert.Equal(t, "https://maps.googleapis.com/maps/api", cfg.APIs.Places.BaseURL)
	assert.Equal(t, "https://api.rentcast.io/v1", cfg.APIs.RentCast.BaseURL)
	assert.Equal(t, "gemini-2.5-flash", cfg.APIs.Gemini.Model)
	assert.Equal(t, 60000, cfg.APIs.Gemini.Timeout)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadFromFileEnvExpansion(t *testing.T) {
	t.Setenv("TEST_GEMINI_KEY", "gm-secret")

	path := writeConfigFile(t, `
redis:
  address: "localhost:6379"
apis:
  gemini:
    api_key: "${TEST_GEMINI_KEY}"
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "gm-secret", cfg.APIs.Gemini.APIKey)
}

func TestLoadFromFileEnvFallbacks(t *testing.T) {
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_123")
	t.Setenv("RENTCAST_API_KEY", "rc-key")

	path := writeConfigFile(t, `
redis:
  address: "localhost:6379"
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "sk_test_123", cfg.Stripe.SecretKey)
	assert.Equal(t, "rc-key", cfg.APIs.RentCast.APIKey)
}

func TestMissingCredentialsAreNotFatal(t *testing.T) {
	// Credentials are checked per request; startup only needs addresses.
	path := writeConfigFile(t, `
redis:
  address: "localhost:6379"
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Empty(t, cfg.APIs.Places.APIKey)
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, "1.5s", GetDuration(1500).String())
	assert.Equal(t, "0s", GetDuration(0).String())
}
