package config

import (
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "QUOTEKEEPER"

// parseEnv overlays cfg with QUOTEKEEPER_* environment variables, e.g.
// QUOTEKEEPER_API_BASE_URL or QUOTEKEEPER_REQUEST_TIMEOUT=5s.
func parseEnv(cfg *Config) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var ec Config
	ec.APIBaseURL = v.GetString("api_base_url")
	ec.AuthURL = v.GetString("auth_url")
	ec.AnonKey = v.GetString("anon_key")
	ec.RequestTimeout = v.GetDuration("request_timeout")
	ec.RefreshMargin = v.GetDuration("refresh_margin")
	ec.LogFormat = v.GetString("log_format")
	ec.LogLevel = v.GetString("log_level")

	overlay(cfg, &ec)
}
