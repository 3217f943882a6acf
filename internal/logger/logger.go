// Package logger configures the process wide zerolog instance.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/substantialcattle5/deduce/internal/constants"
)

var Logger *zerolog.Logger

// Init configures the global logger. level is one of "debug", "info",
// "warn" or "error". When file is non empty the structured log is appended
// there in addition to the console output on stderr.
func Init(level string, file string) error {
	var logLevel zerolog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = zerolog.DebugLevel
	case "info":
		logLevel = zerolog.InfoLevel
	case "warn":
		logLevel = zerolog.WarnLevel
	case "error":
		logLevel = zerolog.ErrorLevel
	default:
		logLevel = zerolog.InfoLevel
	}

	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}

	var output io.Writer = console
	if file != "" {
		fileWriter, err := os.OpenFile(file, os.O_APPEND|os.O_CREATE|os.O_WRONLY, constants.StandardFilePerms)
		if err != nil {
			return err
		}
		// Console keeps the pretty format, the file receives raw JSON.
		output = io.MultiWriter(console, fileWriter)
	}

	logger := zerolog.New(output).Level(logLevel).With().Timestamp().Logger()

	Logger = &logger
	log.Logger = logger
	return nil
}

// Get returns the global logger. Before Init is called it returns a
// logger that discards everything, so library code can log unconditionally.
func Get() *zerolog.Logger {
	if Logger == nil {
		logger := zerolog.New(io.Discard)
		Logger = &logger
	}
	return Logger
}
