package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Global logger instance
var defaultLogger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// Setup configures the global logger. level is one of debug, info, warn, error;
// format "json" writes JSON lines, anything else writes human readable console output.
func Setup(level, format string, out io.Writer) {
	if out == nil {
		out = os.Stdout
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	if format == "json" {
		defaultLogger = zerolog.New(out).With().Timestamp().Logger()
		return
	}

	defaultLogger = zerolog.New(zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Logger()
}

// Get returns the global logger for structured events.
func Get() *zerolog.Logger {
	return &defaultLogger
}

// Package-level functions for easy access
func Debug(format string, v ...interface{}) { defaultLogger.Debug().Msgf(format, v...) }
func Info(format string, v ...interface{})  { defaultLogger.Info().Msgf(format, v...) }
func Warn(format string, v ...interface{})  { defaultLogger.Warn().Msgf(format, v...) }
func Error(format string, v ...interface{}) { defaultLogger.Error().Msgf(format, v...) }
func Fatal(format string, v ...interface{}) { defaultLogger.Fatal().Msgf(format, v...) }
