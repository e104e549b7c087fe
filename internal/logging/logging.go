// Package logging holds the small amount of zerolog setup shared by the
// library packages and the CLI.
package logging

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Level maps a -v count to a zerolog level.
func Level(verbosity int) zerolog.Level {
	switch {
	case verbosity <= 0:
		return zerolog.WarnLevel
	case verbosity == 1:
		return zerolog.InfoLevel
	case verbosity == 2:
		return zerolog.DebugLevel
	default:
		return zerolog.TraceLevel
	}
}

// SetVerbosity raises or lowers the global level. Caller information is
// attached to the process logger from debug upward.
func SetVerbosity(verbosity int) {
	zerolog.SetGlobalLevel(Level(verbosity))
	if verbosity >= 2 {
		log.Logger = log.Logger.With().Caller().Logger()
	}
}

// Component returns the process logger tagged with a component name.
func Component(name string) zerolog.Logger {
	return log.Logger.With().Str("component", name).Logger()
}
