package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func Test_parseFile(t *testing.T) {
	t.Run("json file", func(t *testing.T) {
		path := writeTemp(t, "cfg.json", `{"api_base_url":"http://json.example","request_timeout":"7s","log_format":"slog"}`)

		cfg := &Config{AuthURL: "keep-me"}
		parseFile(cfg, path)

		assert.Equal(t, "http://json.example", cfg.APIBaseURL)
		assert.Equal(t, 7*time.Second, cfg.RequestTimeout)
		assert.Equal(t, "slog", cfg.LogFormat)
		assert.Equal(t, "keep-me", cfg.AuthURL)
	})

	t.Run("empty path → no changes", func(t *testing.T) {
		cfg := &Config{APIBaseURL: "defaults"}
		parseFile(cfg, "")
		assert.Equal(t, "defaults", cfg.APIBaseURL)
	})

	t.Run("missing file → panics", func(t *testing.T) {
		require.Panics(t, func() { parseFile(&Config{}, filepath.Join(t.TempDir(), "nope.yaml")) })
	})

	t.Run("invalid yaml → panics", func(t *testing.T) {
		path := writeTemp(t, "bad.yaml", "api_base_url: [unclosed")
		require.Panics(t, func() { parseFile(&Config{}, path) })
	})
}

func Test_parseEnv(t *testing.T) {
	t.Setenv("QUOTEKEEPER_ANON_KEY", "anon")
	t.Setenv("QUOTEKEEPER_REQUEST_TIMEOUT", "1500ms")

	cfg := &Config{LogLevel: "info"}
	parseEnv(cfg)

	assert.Equal(t, "anon", cfg.AnonKey)
	assert.Equal(t, 1500*time.Millisecond, cfg.RequestTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
}

func Test_parseEnv_AllKeys(t *testing.T) {
	t.Setenv("QUOTEKEEPER_API_BASE_URL", "http://api.env")
	t.Setenv("QUOTEKEEPER_AUTH_URL", "http://auth.env/auth/v1")
	t.Setenv("QUOTEKEEPER_REFRESH_MARGIN", "2m")
	t.Setenv("QUOTEKEEPER_LOG_FORMAT", "zerolog")
	t.Setenv("QUOTEKEEPER_LOG_LEVEL", "debug")
	t.Setenv("QUOTEKEEPER_REQUEST_TIMEOUT", "soon")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	assert.Equal(t, "http://api.env", cfg.APIBaseURL)
	assert.Equal(t, "http://auth.env/auth/v1", cfg.AuthURL)
	assert.Equal(t, 2*time.Minute, cfg.RefreshMargin)
	assert.Equal(t, "zerolog", cfg.LogFormat)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout, "unparsable duration keeps the default")
}
