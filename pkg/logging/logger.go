// Package logging provides structured logging for sheetsync using zerolog.
//
// Diagnostics always go to stderr so stdout stays free for the action batch.
//
// Example usage:
//
//	log := logging.Default()
//	log.Info().Str("sheet", "NanaGarden").Int("rows", 42).Msg("Extracted rows")
//
//	ctx := logging.WithSheet(logging.WithLogger(ctx, log), "NanaGarden")
//	logging.FromContext(ctx).Debug().Msg("Classified as table")
package logging

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// defaultLogger is the global logger instance.
var defaultLogger zerolog.Logger

func init() {
	defaultLogger = createDefaultLogger()
}

// createDefaultLogger creates a logger with default settings.
func createDefaultLogger() zerolog.Logger {
	var writer io.Writer = os.Stderr

	if stderrIsTerminal() && getEnv("LOG_FORMAT") != "json" {
		writer = zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.Kitchen,
			NoColor:    os.Getenv("NO_COLOR") != "",
		}
	}

	level := getLogLevel()
	zerolog.SetGlobalLevel(level)

	logger := zerolog.New(writer).
		Level(level).
		With().
		Timestamp().
		Logger()

	if level <= zerolog.DebugLevel {
		logger = logger.With().Caller().Logger()
	}

	return logger
}

// Default returns the default global logger.
func Default() *zerolog.Logger {
	return &defaultLogger
}

// SetDefault sets the default global logger.
func SetDefault(logger zerolog.Logger) {
	defaultLogger = logger
	log.Logger = logger
}

// stderrIsTerminal reports whether stderr is attached to a terminal.
func stderrIsTerminal() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// getEnv reads SHEETSYNC_<key> first, then the bare key.
func getEnv(key string) string {
	if v := os.Getenv("SHEETSYNC_" + key); v != "" {
		return v
	}
	return os.Getenv(key)
}

// getLogLevel returns the log level from environment or defaults.
func getLogLevel() zerolog.Level {
	levelStr := getEnv("LOG_LEVEL")
	if levelStr == "" {
		if os.Getenv("DEBUG") != "" {
			return zerolog.DebugLevel
		}
		return zerolog.InfoLevel
	}
	return parseLevel(levelStr)
}
