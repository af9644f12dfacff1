// Package common holds small utilities shared across the module.
package common

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger returns the module's standard logger. Output is JSON to stdout;
// set PRETTY=1 for a console writer and DEBUG=1 to enable debug level.
func NewLogger() zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	if os.Getenv("PRETTY") == "1" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	if os.Getenv("DEBUG") == "1" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	return logger
}
