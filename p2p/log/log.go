// Package log is the process wide zerolog logger used by the p2p packages.
package log

import (
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

var logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

// SetOutput redirects all log output to w.
func SetOutput(w io.Writer) {
	logger = logger.Output(w)
}

// SetLevel sets the minimum level that is written, e.g. "debug" or "warn".
func SetLevel(level string) error {
	var lvl zerolog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = zerolog.DebugLevel
	case "", "info":
		lvl = zerolog.InfoLevel
	case "warn", "warning":
		lvl = zerolog.WarnLevel
	case "error":
		lvl = zerolog.ErrorLevel
	case "fatal":
		lvl = zerolog.FatalLevel
	default:
		return errors.Errorf("unknown log level %q", level)
	}
	logger = logger.Level(lvl)
	return nil
}

// Logger returns a copy of the current logger, for adding context fields.
func Logger() zerolog.Logger {
	return logger
}

// Debug starts a new message with debug level.
func Debug() *zerolog.Event {
	return logger.Debug()
}

// Info starts a new message with info level.
func Info() *zerolog.Event {
	return logger.Info()
}

// Warn starts a new message with warn level.
func Warn() *zerolog.Event {
	return logger.Warn()
}

// Error starts a new message with error level.
func Error() *zerolog.Event {
	return logger.Error()
}

// Fatal starts a new message with fatal level. The process exits after Msg.
func Fatal() *zerolog.Event {
	return logger.Fatal()
}
