// Package logging builds the process logger from configuration.
package logging

import (
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/pokerjest/tvboxfeed/internal/config"
)

// New returns a logrus logger writing to stderr.
func New(cfg config.LogConfig) *log.Logger {
	return NewWithOutput(cfg, os.Stderr)
}

func NewWithOutput(cfg config.LogConfig, out io.Writer) *log.Logger {
	l := log.New()
	l.SetOutput(out)

	level, err := log.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = log.InfoLevel
	}
	l.SetLevel(level)

	if strings.EqualFold(cfg.Format, "json") {
		l.SetFormatter(&log.JSONFormatter{})
	} else {
		l.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return l
}

// Discard is a logger for tests and library callers that do not care.
func Discard() *log.Logger {
	l := log.New()
	l.SetOutput(io.Discard)
	return l
}
