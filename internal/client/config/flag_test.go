package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{
			name: "all flags",
			args: []string{"-a", "http://api:9090", "-u", "http://auth", "-k", "key", "-t", "5", "-l", "debug", "-f", "slog"},
			expected: &Config{APIBaseURL: "http://api:9090", AuthURL: "http://auth", AnonKey: "key",
				RequestTimeout: 5 * time.Second, LogLevel: "debug", LogFormat: "slog"},
		},
		{
			name:     "timeout untouched without -t",
			args:     []string{"-a", "http://api"},
			expected: &Config{APIBaseURL: "http://api", RequestTimeout: 1500 * time.Millisecond},
		},
		{name: "incorrect timeout", args: []string{"-t", "abc"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{RequestTimeout: 1500 * time.Millisecond}

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(cfg, tt.args) })
				return
			}

			require.NotPanics(t, func() { parseFlags(cfg, tt.args) })
			assert.Empty(t, cmp.Diff(tt.expected, cfg))
		})
	}
}
