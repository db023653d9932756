package config

import (
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// parseFile overlays cfg with values from the config file at path. The
// format (yaml, json, toml) follows the file extension. Durations may be
// written as "10s" or "1m30s". Keys missing from the file keep their
// current values.
//
// Panics on read or decode errors; an empty path is a no-op.
func parseFile(cfg *Config, path string) {
	if path == "" {
		return
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		panic(err)
	}

	var fc Config
	if err := v.Unmarshal(&fc, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.StringToTimeDurationHookFunc()
	}); err != nil {
		panic(err)
	}

	overlay(cfg, &fc)
}

// overlay copies every non-zero field of src into dst.
func overlay(dst, src *Config) {
	if src.APIBaseURL != "" {
		dst.APIBaseURL = src.APIBaseURL
	}
	if src.AuthURL != "" {
		dst.AuthURL = src.AuthURL
	}
	if src.AnonKey != "" {
		dst.AnonKey = src.AnonKey
	}
	if src.RequestTimeout != 0 {
		dst.RequestTimeout = src.RequestTimeout
	}
	if src.RefreshMargin != 0 {
		dst.RefreshMargin = src.RefreshMargin
	}
	if src.LogFormat != "" {
		dst.LogFormat = src.LogFormat
	}
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
	}
}
