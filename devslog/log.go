// Package devslog provides the structured logging used by the
// Coordinator and the CLI driver. Grounded on
// inference-sim-inference-sim's use of github.com/sirupsen/logrus as
// its logging library, rather than the standard library's log package
// used elsewhere for ad-hoc panics.
package devslog

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the subset of *logrus.Logger this repo depends on, kept
// narrow so tests can supply a silent implementation.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	WithField(key string, value interface{}) *logrus.Entry
}

// New returns a *logrus.Logger configured the way the Coordinator's
// driver expects: text formatting with full timestamps, level from the
// DEVSCORE_LOG_LEVEL environment variable (defaulting to "info").
func New() *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	l.SetOutput(os.Stderr)

	level, err := logrus.ParseLevel(envOr("DEVSCORE_LOG_LEVEL", "info"))
	if err != nil {
		level = logrus.InfoLevel
	}

	l.SetLevel(level)

	return l
}

// Silent returns a Logger that discards everything, for use in tests
// that exercise Coordinator behavior without caring about log output.
func Silent() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(discard{})
	l.SetLevel(logrus.PanicLevel)

	return l
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}
