// Package logging configures zerolog for the client, the cache and the proxy.
//
// Setup installs the process-wide logger once at startup; packages derive
// their own tagged loggers from it with NewLogger.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel is a textual log level as found in configuration.
type LogLevel string

// Supported levels. Unknown values behave like LevelInfo.
const (
	LevelDebug    LogLevel = "debug"
	LevelInfo     LogLevel = "info"
	LevelWarn     LogLevel = "warn"
	LevelError    LogLevel = "error"
	LevelDisabled LogLevel = "disabled"
)

// ComponentField is the field name carrying the component of a logger.
const ComponentField = "component"

// Config selects level, format and destination of the global logger.
type Config struct {
	Level LogLevel

	// Pretty switches from JSON lines to colored console output.
	Pretty bool

	// Output defaults to os.Stderr.
	Output io.Writer

	// Service, when set, is attached to every line as "service".
	Service string
}

// DefaultConfig returns JSON logging at info level to stderr.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Output: os.Stderr,
	}
}

// Setup installs the global logger described by cfg and returns it.
func Setup(cfg Config) zerolog.Logger {
	zerolog.SetGlobalLevel(ParseLevel(cfg.Level))

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly}
	}

	ctx := zerolog.New(out).With().Timestamp()
	if cfg.Service != "" {
		ctx = ctx.Str("service", cfg.Service)
	}
	logger := ctx.Logger()
	log.Logger = logger

	return logger
}

// ParseLevel maps a configured level to zerolog. Matching ignores case and
// surrounding spaces; unknown values map to info.
func ParseLevel(level LogLevel) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(string(level))) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger derives a logger tagged with component from the global logger.
// Call it after Setup; loggers created earlier keep the old output.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str(ComponentField, component).Logger()
}

// Level usage:
//
// Debug: cache internals
//   - Cache hit/miss, normalized key
//   - Stale-prefix evictions, budget evictions
//   - Identity change invalidations
//
// Info: normal operation events
//   - Session login/logout
//   - Server startup/shutdown
//
// Warn: input the cache or filter layer refused
//   - Empty field names, nil filters, filters without value
//   - URLs outside the API base (not cacheable)
//   - Responses larger than the whole cache budget
//
// Error: failures a caller sees
//   - Transport failures and non-2xx API responses
//   - Session store (Redis) failures
//
// Common fields: endpoint, size, total_size, max_size, evicted,
// status_code, duration.
