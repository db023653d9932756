package config

import (
	"os"
	"time"

	"github.com/dmitrijs2005/quotekeeper/internal/flagx"
)

// Config holds runtime settings for the quotekeeper CLI.
type Config struct {
	// APIBaseURL is the origin of the resource backend (/api/...).
	APIBaseURL string `mapstructure:"api_base_url"`

	// AuthURL is the base of the GoTrue-compatible auth service, e.g.
	// https://project.supabase.co/auth/v1.
	AuthURL string `mapstructure:"auth_url"`

	// AnonKey is the public project key sent as the apikey header.
	AnonKey string `mapstructure:"anon_key"`

	// RequestTimeout bounds every outbound HTTP call.
	RequestTimeout time.Duration `mapstructure:"request_timeout"`

	// RefreshMargin is how long before expiry the access token is renewed.
	RefreshMargin time.Duration `mapstructure:"refresh_margin"`

	LogFormat string `mapstructure:"log_format"`
	LogLevel  string `mapstructure:"log_level"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:8000"
	c.AuthURL = "http://localhost:9999/auth/v1"
	c.AnonKey = ""
	c.RequestTimeout = 10 * time.Second
	c.RefreshMargin = time.Minute
	c.LogFormat = "zap"
	c.LogLevel = "info"
}

// LoadConfig constructs a Config from defaults, then overlays the config
// file (if -c/-config is given), QUOTEKEEPER_* environment variables and
// command-line flags. Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	return load(os.Args[1:])
}

func load(args []string) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg, flagx.ConfigFileFlag(args))
	parseEnv(cfg)
	parseFlags(cfg, args)
	return cfg
}
