package bootstrap

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger sets the global level and builds the process logger. format is
// "json" or "console".
func NewLogger(out io.Writer, level zerolog.Level, format string) zerolog.Logger {
	zerolog.SetGlobalLevel(level)

	if format == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).With().Timestamp().Logger()
}
