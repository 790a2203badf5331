package app

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/agentstation/sheetsync/pkg/logging"
)

// NewLogger creates a configured logger based on the application configuration.
// Log level precedence (highest to lowest):
//  1. --log-level flag or SHEETSYNC_LOG_LEVEL
//  2. -v/--verbose flag (shortcut for debug)
//  3. -q/--quiet flag (shortcut for warn)
//  4. Default (info)
//
// Warnings about conflicting settings are written to warn.
func NewLogger(config *Config, warn io.Writer) zerolog.Logger {
	level := determineLogLevel(config, warn)

	logConfig := logging.DefaultConfig()
	logConfig.Level = level
	logConfig.NoColor = logConfig.NoColor || config.NoColor
	logConfig.AddCaller = level == "debug" || level == "trace"
	if config.LogFormat != "" {
		logConfig.Format = config.LogFormat
	}
	if config.LogOutput != "" {
		logConfig.Output = config.LogOutput
	}

	return logging.NewLoggerFromConfig(logConfig)
}

// determineLogLevel determines the log level using clear precedence rules.
func determineLogLevel(config *Config, warn io.Writer) string {
	if config.LogLevel != "" {
		validated := validateLogLevel(config.LogLevel)
		if validated != config.LogLevel {
			fmt.Fprintf(warn, "Warning: invalid log level %q, using %q\n", config.LogLevel, validated)
		}
		return validated
	}

	if config.Verbose && config.Quiet {
		fmt.Fprintf(warn, "Warning: both --verbose and --quiet specified, using --quiet\n")
		return "warn"
	}

	if config.Verbose {
		return "debug"
	}
	if config.Quiet {
		return "warn"
	}

	return "info"
}

// validateLogLevel returns level when it is valid and "info" otherwise.
func validateLogLevel(level string) string {
	switch level {
	case "trace", "debug", "info", "warn", "error":
		return level
	default:
		return "info"
	}
}
