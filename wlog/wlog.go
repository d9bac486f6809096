// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package wlog is wlproxy's structured logger, a thin zerolog wrapper
// in the same shape as adoctl's pkg/logger: a package-level logger
// configured once at startup, level set from a string, and per-call
// event builders callers attach fields to.
package wlog

import (
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var log zerolog.Logger

func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	log = zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// SetLevel parses level (debug/info/warn/error/fatal/panic) and sets it
// as the global minimum; an unrecognized string falls back to info.
func SetLevel(level string) {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)
}

func Debug() *zerolog.Event { return log.Debug() }
func Info() *zerolog.Event  { return log.Info() }
func Warn() *zerolog.Event  { return log.Warn() }
func Error() *zerolog.Event { return log.Error() }
func Fatal() *zerolog.Event { return log.Fatal() }

// WithClient returns a child logger with the client connection's
// numeric ID attached, for lines that should be traceable to a
// specific proxied connection (spec §6's "numeric client id").
func WithClient(clientID uint32) zerolog.Logger {
	return log.With().Uint32("client_id", clientID).Logger()
}

// WithConnection returns a child logger tagging both the client's
// numeric ID and a per-connection session UUID. The numeric ID counts
// up from 1 in every proxy run, so the same number recurs across runs
// that share one log stream; the session ID is unique per connection.
func WithConnection(clientID uint32, sessionID uuid.UUID) zerolog.Logger {
	return log.With().Uint32("client_id", clientID).Str("session_id", sessionID.String()).Logger()
}
