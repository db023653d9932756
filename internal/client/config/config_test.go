package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://localhost:8000", c.APIBaseURL)
	assert.Equal(t, "http://localhost:9999/auth/v1", c.AuthURL)
	assert.Equal(t, 10*time.Second, c.RequestTimeout)
	assert.Equal(t, time.Minute, c.RefreshMargin)
	assert.Equal(t, "zap", c.LogFormat)
	assert.Equal(t, "info", c.LogLevel)
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api_base_url: http://file.example
auth_url: http://auth.file.example
request_timeout: 3s
log_level: debug
`), 0o600))

	t.Setenv("QUOTEKEEPER_AUTH_URL", "http://auth.env.example")
	t.Setenv("QUOTEKEEPER_REFRESH_MARGIN", "30s")

	cfg := load([]string{"-c", path, "-a", "http://flag.example", "-unknown", "x"})

	assert.Equal(t, "http://flag.example", cfg.APIBaseURL, "flags beat file")
	assert.Equal(t, "http://auth.env.example", cfg.AuthURL, "env beats file")
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout, "file beats defaults")
	assert.Equal(t, 30*time.Second, cfg.RefreshMargin)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "zap", cfg.LogFormat, "untouched keys keep defaults")
}

func TestLoad_NoSources(t *testing.T) {
	cfg := load(nil)

	var want Config
	want.LoadDefaults()
	assert.Equal(t, &want, cfg)
}
