// Package logging constructs the module's zerolog logger.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds a logger for the given environment and level. Development gets
// a human-readable console writer; everything else logs JSON.
func New(environment, level string) zerolog.Logger {
	var output io.Writer = os.Stdout
	if environment == "development" {
		output = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
	}

	logLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		logLevel = zerolog.InfoLevel
	}

	return zerolog.New(output).
		Level(logLevel).
		With().
		Timestamp().
		Logger()
}
