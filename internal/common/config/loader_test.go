package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
nasa:
  apod_base_url: https://api.nasa.gov/planetary/apod
  images_base_url: https://images-api.nasa.gov/search
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "astrodeck", cfg.App.Name)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.Equal(t, 24*time.Hour, cfg.Store.TTL)

	assert.Equal(t, 8*time.Second, cfg.NASA.Retry.Timeout)
	assert.Equal(t, 2, cfg.NASA.Retry.MaxRetries)
	assert.Equal(t, 300*time.Millisecond, cfg.NASA.Retry.BaseDelay)
	assert.Equal(t, 2*time.Second, cfg.NASA.Retry.MaxDelay)
	assert.InDelta(t, 0.2, cfg.NASA.Retry.Jitter, 1e-9)

	assert.Equal(t, 365, cfg.NASA.ApodCache.MaxSize)
	assert.Equal(t, 12*time.Hour, cfg.NASA.ApodCache.TTL)
	assert.Equal(t, 2000, cfg.NASA.ImageCache.MaxSize)
	assert.Equal(t, 20*time.Minute, cfg.NASA.ImageCache.TTL)

	assert.Equal(t, 60*time.Second, cfg.Cloudflare.Retry.Timeout)
	assert.Equal(t, 1, cfg.Cloudflare.Retry.MaxRetries)
	assert.Equal(t, 3, cfg.Cloudflare.MaxVocabulary)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFromFile_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  address: ":9090"
nasa:
  apod_base_url: https://api.nasa.gov/planetary/apod
  images_base_url: https://images-api.nasa.gov/search
  retry:
    max_retries: 5
store:
  backend: redis
  ttl: 1h
database:
  redis:
    address: localhost:6379
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, 5, cfg.NASA.Retry.MaxRetries)
	assert.Equal(t, "redis", cfg.Store.Backend)
	assert.Equal(t, time.Hour, cfg.Store.TTL)
}

func TestLoadFromFile_ExpandsEnvVars(t *testing.T) {
	t.Setenv("TEST_NASA_KEY", "secret-key")
	path := writeConfig(t, `
nasa:
  api_key: ${TEST_NASA_KEY}
  apod_base_url: https://api.nasa.gov/planetary/apod
  images_base_url: https://images-api.nasa.gov/search
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "secret-key", cfg.NASA.APIKey)
}

func TestLoadFromFile_RejectsMissingBaseURLs(t *testing.T) {
	path := writeConfig(t, `
nasa:
  apod_base_url: https://api.nasa.gov/planetary/apod
`)

	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "images_base_url")
}

func TestLoadFromFile_RejectsUnknownStoreBackend(t *testing.T) {
	path := writeConfig(t, `
nasa:
  apod_base_url: https://api.nasa.gov/planetary/apod
  images_base_url: https://images-api.nasa.gov/search
store:
  backend: cassandra
`)

	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.backend")
}

func TestCloudflareConfig_Configured(t *testing.T) {
	cfg := CloudflareConfig{
		AccountID: "acc",
		Provider:  "workers-ai",
		Vendor:    "meta",
		Model:     "llama-3",
		APIToken:  "token",
	}
	assert.True(t, cfg.Configured())
	assert.Equal(t, "workers-ai/meta/llama-3", cfg.ModelID())

	cfg.APIToken = ""
	assert.False(t, cfg.Configured())
}

func TestValidate_RedisBackendRequiresAddress(t *testing.T) {
	cfg := &Config{
		NASA: NasaConfig{
			ApodBaseURL:   "https://api.nasa.gov/planetary/apod",
			ImagesBaseURL: "https://images-api.nasa.gov/search",
		},
		Store: StoreConfig{Backend: "redis"},
	}
	require.Error(t, cfg.Validate())

	cfg.Database.Redis.Address = "localhost:6379"
	require.NoError(t, cfg.Validate())
}
