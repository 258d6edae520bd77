// Package logging configures the process-wide zerolog.Logger via a single
// constructor rather than a package-level global, so it can be threaded
// explicitly through library code.
package logging

import (
	"os"

	"github.com/rs/zerolog"
)

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
}

// New builds a Logger for the given format ("json" or anything else for
// console). Console output is intended for interactive cmd/ usage; json
// for supervised/production runs.
func New(format string) zerolog.Logger {
	if format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Caller().Logger()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Caller().Logger()
}
