package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// New builds the process logger. JSON goes to stdout unless format is
// "console", or format is empty and env is dev.
func New(env, format string) zerolog.Logger {
	return newWithWriter(os.Stdout, env, format)
}

// FromEnv builds a logger from APP_ENV and LOG_FORMAT alone. Binaries use it
// before the configuration has loaded.
func FromEnv() zerolog.Logger {
	return fromEnv(os.Stdout)
}

func fromEnv(out io.Writer) zerolog.Logger {
	return newWithWriter(out, os.Getenv("APP_ENV"), os.Getenv("LOG_FORMAT"))
}

func newWithWriter(out io.Writer, env, format string) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if strings.EqualFold(env, "prod") {
		zerolog.TimeFieldFormat = "2006-01-02T15:04:05.000Z07:00"
	}

	w := out
	if useConsole(env, format) {
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}

	level := zerolog.InfoLevel
	if strings.EqualFold(env, "dev") {
		level = zerolog.DebugLevel
	}

	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

func useConsole(env, format string) bool {
	switch strings.ToLower(format) {
	case "console":
		return true
	case "json":
		return false
	}
	return strings.EqualFold(env, "dev")
}
