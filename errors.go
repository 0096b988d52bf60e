/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"io"
	"net/http"
	"os"

	"github.com/rs/zerolog"
)

const (
	logDate string = `2006-01-02T15:04:05.000-07:00`
)

// newLogger writes human-readable logs to out. Debug output is only shown
// with --verbose.
func newLogger(cfg *Config, out io.Writer) zerolog.Logger {
	level := zerolog.InfoLevel
	if cfg.verbose {
		level = zerolog.DebugLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: logDate}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

func defaultLogger(cfg *Config) zerolog.Logger {
	return newLogger(cfg, os.Stderr)
}

// panicHandler reports a recovered handler panic and answers with a plain 500.
func panicHandler(cfg *Config, logger zerolog.Logger) func(http.ResponseWriter, *http.Request, any) {
	return func(w http.ResponseWriter, r *http.Request, i any) {
		logger.Error().
			Interface("panic", i).
			Str("path", r.URL.Path).
			Str("remote", realIP(r)).
			Msg("recovered from panic")

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		securityHeaders(cfg, w)
		w.WriteHeader(http.StatusInternalServerError)

		_, _ = io.WriteString(w, "An error has occurred. Please try again.\n")
	}
}
