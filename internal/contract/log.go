package contract

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var logger = newLogger(os.Stderr)

func newLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}).
		Level(zerolog.InfoLevel).With().Timestamp().Logger()
}

// SetLogOutput redirects log output, mainly for tests. The current level is kept.
func SetLogOutput(w io.Writer) {
	logger = newLogger(w).Level(logger.GetLevel())
}

// SetVerbose toggles debug output.
func SetVerbose(verbose bool) {
	if verbose {
		logger = logger.Level(zerolog.DebugLevel)
		return
	}
	logger = logger.Level(zerolog.InfoLevel)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	logger.Error().Err(err).Msg(msg)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	logger.Warn().Err(err).Msg(msg)
}

// LogInfo logs an informational message.
func LogInfo(msg string) {
	logger.Info().Msg(msg)
}

// LogDebug logs a message only visible with --verbose.
func LogDebug(msg string) {
	logger.Debug().Msg(msg)
}
