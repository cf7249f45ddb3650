package utils

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger builds the service logger. Release mode writes JSON lines at info
// level; any other mode writes colored console output at debug level.
func NewLogger(mode string) zerolog.Logger {
	if mode == "release" {
		return zerolog.New(os.Stdout).
			Level(zerolog.InfoLevel).
			With().Timestamp().Str("service", "hospital-admission").
			Logger()
	}

	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		Level(zerolog.DebugLevel).
		With().Timestamp().
		Logger()
}
