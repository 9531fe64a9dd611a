// Package logger configures the logrus logger used across the viewer.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Options selects level, format and output.
type Options struct {
	Level  string // logrus level name, default "info"
	Format string // "json" or "text"
	Output io.Writer
}

// New builds a logger. Unknown levels fall back to info.
func New(opts Options) *logrus.Logger {
	l := logrus.New()

	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	if strings.ToLower(opts.Format) == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	if opts.Output != nil {
		l.SetOutput(opts.Output)
	} else {
		l.SetOutput(os.Stderr)
	}
	return l
}

// FromEnv builds a logger from LOG_LEVEL and LOG_FORMAT.
func FromEnv() *logrus.Logger {
	level, ok := os.LookupEnv("LOG_LEVEL")
	if !ok {
		level = "info"
	}
	return New(Options{Level: level, Format: os.Getenv("LOG_FORMAT")})
}

// Install makes l the standard logger, which domain packages default to.
func Install(l *logrus.Logger) {
	std := logrus.StandardLogger()
	std.SetLevel(l.GetLevel())
	std.SetFormatter(l.Formatter)
	std.SetOutput(l.Out)
}
