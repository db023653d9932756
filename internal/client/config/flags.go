package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/quotekeeper/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   resource backend base URL
//	-u string   auth service base URL
//	-k string   public API key
//	-t int      request timeout (in seconds)
//	-l string   log level: debug, info, warn, error
//	-f string   log format: zap, zerolog, slog
//
// Only these flags are picked out of args, so flags owned by other
// components do not cause parse errors here.
func parseFlags(cfg *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-a", "-u", "-k", "-t", "-l", "-f"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "resource backend base URL")
	fs.StringVar(&cfg.AuthURL, "u", cfg.AuthURL, "auth service base URL")
	fs.StringVar(&cfg.AnonKey, "k", cfg.AnonKey, "public API key")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.LogFormat, "f", cfg.LogFormat, "log format")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			cfg.RequestTimeout = time.Duration(*timeout) * time.Second
		}
	})
}
