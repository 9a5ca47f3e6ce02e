package logging

import (
	"io"
	"os"
	"strings"

	"github.com/natefinch/lumberjack"
	"github.com/rs/zerolog"

	"github.com/kyleterry/vhttp/pkg/config"
)

// New creates a logger from the log configuration. Console output is written
// to stderr in a human readable form; json output is written as is. When a log
// file is configured, output also goes to a rotating file.
func New(cfg config.LogConfig) zerolog.Logger {
	var output io.Writer = os.Stderr

	if !strings.EqualFold(cfg.Format, "json") {
		output = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	}

	if cfg.File != "" {
		fileLogger := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB, // megabytes
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays, // days
		}
		output = io.MultiWriter(fileLogger, output)
	}

	return NewLogger(ParseLevel(cfg.Level), output)
}

// NewLogger creates a logger at the given level writing to output.
func NewLogger(level zerolog.Level, output io.Writer) zerolog.Logger {
	if output == nil {
		output = os.Stderr
	}

	return zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// ParseLevel turns a level name into a zerolog level, defaulting to info.
func ParseLevel(s string) zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}

	return level
}

// Nop returns a logger that discards everything.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}

// WithComponent returns a child logger with the component field set.
func WithComponent(logger zerolog.Logger, component string) zerolog.Logger {
	return logger.With().Str("component", component).Logger()
}
