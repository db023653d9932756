package logging

import (
	"fmt"
	"io"
)

// Supported output formats for New.
const (
	FormatZap     = "zap"
	FormatZerolog = "zerolog"
	FormatSlog    = "slog"
)

// New returns a Logger of the given format writing to w at level.
func New(format string, level Level, w io.Writer) (Logger, error) {
	switch format {
	case "", FormatZap:
		return newConsoleZap(w, level), nil
	case FormatZerolog:
		return newConsoleZerolog(w, level), nil
	case FormatSlog:
		return newTextSlog(w, level), nil
	}
	return nil, fmt.Errorf("unknown log format %q", format)
}
