// Package config loads runtime configuration for the quotekeeper CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected with -c or -config (yaml, json or toml,
//     read with viper).
//  3. QUOTEKEEPER_* environment variables.
//  4. Command-line flags, which override everything else.
//
// Example config.yaml:
//
//	api_base_url: https://quotes.example.com
//	auth_url: https://project.supabase.co/auth/v1
//	anon_key: public-anon-key
//	request_timeout: 5s
//	refresh_margin: 1m
//	log_format: zerolog
//	log_level: debug
package config
