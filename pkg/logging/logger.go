// Package logging configures the process-wide zerolog logger.
//
// Library packages attach component loggers through zerolog/log directly
// (log.With().Str("component", ...)); Setup is called once by the proxy
// binary, and by tests that want to capture output.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum level to emit: debug, info, warn or error.
	// Unknown values fall back to info.
	Level string

	// Pretty switches from JSON lines to human-readable console output.
	Pretty bool

	// Output is the writer logs go to (default: os.Stderr).
	Output io.Writer
}

// FromEnv builds a Config from the LOG_LEVEL and PRETTY_LOGS environment
// variables.
func FromEnv() Config {
	return Config{
		Level:  os.Getenv("LOG_LEVEL"),
		Pretty: os.Getenv("PRETTY_LOGS") != "",
	}
}

// Setup configures the global zerolog logger and returns it.
func Setup(cfg Config) zerolog.Logger {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: output}
	}

	logger := zerolog.New(output).With().Timestamp().Logger()
	log.Logger = logger
	return logger
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Log Level Guidelines:
//
// Debug: Detailed information for debugging
//   - Cache operations (hit/miss, key, TTL)
//   - Batch pagination (ListKey continuation)
//   - Internal state changes
//
// Info: Normal operation events
//   - Successful requests
//   - Server startup/shutdown
//
// Warn: Warning conditions that don't prevent operation
//   - Retry attempts and stale 503 refreshes
//   - Identifier lookup failures (reported per row, not fatal)
//   - Batch property fetch failures
//   - Cache errors (fallback to direct request)
//
// Error: Error conditions requiring attention
//   - Failed requests (after retries)
//   - Service unavailability
//   - Configuration errors
//
// Context Fields:
//   - endpoint: PUG-REST endpoint class (cids, property, synonyms, view)
//   - status_code: HTTP status code
//   - duration: Request duration
//   - error_class: Error classification (client, server, network)
//   - cache_hit: Boolean indicating cache hit
//   - ttl: Cache entry TTL
