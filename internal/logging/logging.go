// Package logging configures the zerolog logger used for diagnostics.
//
// Diagnostics go to stderr through a console writer. User-facing output
// (messages, previews, model lists) is written directly by the commands and
// never goes through the logger.
package logging

import (
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Level picks the global log level from the verbosity flags. Without flags
// only warnings and errors are shown so the interactive flow stays readable.
func Level(verbose, veryVerbose bool) zerolog.Level {
	switch {
	case veryVerbose:
		return zerolog.TraceLevel
	case verbose:
		return zerolog.DebugLevel
	default:
		return zerolog.WarnLevel
	}
}

// Setup points the global logger at w and applies the verbosity level.
func Setup(w io.Writer, verbose, veryVerbose bool) {
	zerolog.TimeFieldFormat = "2006-01-02T15:04:05.000Z"
	log.Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    false,
		TimeFormat: time.Kitchen,
	}).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(Level(verbose, veryVerbose))

	log.Trace().Msg("Trace logging enabled")
	log.Debug().Msg("Debug logging enabled")
}
