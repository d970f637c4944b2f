// Package logging configures the global zerolog logger.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup points log.Logger at stdout. Development gets the console writer,
// everything else JSON lines.
func Setup(env string) {
	setup(env, os.Stdout)
}

func setup(env string, out io.Writer) {
	zerolog.TimeFieldFormat = time.RFC3339
	if env == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		return
	}
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

// IntegrityFault logs a data-integrity fault, kept apart from ordinary
// errors by the fault field.
func IntegrityFault(kind string) *zerolog.Event {
	return log.Error().Str("fault", "integrity").Str("kind", kind)
}
