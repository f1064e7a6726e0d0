package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.InfoLevel)

// setVerbosity lowers the log level by one step per -v flag.
func setVerbosity(verbose int) {
	level := zerolog.InfoLevel - zerolog.Level(verbose)
	if level < zerolog.TraceLevel {
		level = zerolog.TraceLevel
	}
	logger = logger.Level(level)
}
