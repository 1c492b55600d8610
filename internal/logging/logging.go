// Package logging provides runtime.Logger implementations for code running
// outside the Nakama server.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/sirupsen/logrus"
)

// Options controls the logrus backend.
type Options struct {
	Level  string // debug, info, warn, error
	Format string // text or json
	Output io.Writer
}

// NewLogger builds a runtime.Logger backed by logrus.
func NewLogger(opts Options) (runtime.Logger, error) {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	if opts.Output != nil {
		l.SetOutput(opts.Output)
	}

	level := logrus.InfoLevel
	if opts.Level != "" {
		parsed, err := logrus.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("parse log level: %w", err)
		}
		level = parsed
	}
	l.SetLevel(level)

	switch strings.ToLower(opts.Format) {
	case "", "text":
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("unknown log format: %q", opts.Format)
	}

	return &logrusLogger{entry: logrus.NewEntry(l)}, nil
}

type logrusLogger struct {
	entry *logrus.Entry
}

func (l *logrusLogger) Debug(format string, v ...interface{}) { l.entry.Debugf(format, v...) }
func (l *logrusLogger) Info(format string, v ...interface{})  { l.entry.Infof(format, v...) }
func (l *logrusLogger) Warn(format string, v ...interface{})  { l.entry.Warnf(format, v...) }
func (l *logrusLogger) Error(format string, v ...interface{}) { l.entry.Errorf(format, v...) }

func (l *logrusLogger) WithField(key string, v interface{}) runtime.Logger {
	return &logrusLogger{entry: l.entry.WithField(key, v)}
}

func (l *logrusLogger) WithFields(fields map[string]interface{}) runtime.Logger {
	return &logrusLogger{entry: l.entry.WithFields(logrus.Fields(fields))}
}

func (l *logrusLogger) Fields() map[string]interface{} {
	out := make(map[string]interface{}, len(l.entry.Data))
	for k, v := range l.entry.Data {
		out[k] = v
	}
	return out
}

// Nop returns a logger that discards everything.
func Nop() runtime.Logger {
	return nopLogger{}
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{})                     {}
func (nopLogger) Info(string, ...interface{})                      {}
func (nopLogger) Warn(string, ...interface{})                      {}
func (nopLogger) Error(string, ...interface{})                     {}
func (nopLogger) WithField(string, interface{}) runtime.Logger     { return nopLogger{} }
func (nopLogger) WithFields(map[string]interface{}) runtime.Logger { return nopLogger{} }
func (nopLogger) Fields() map[string]interface{}                   { return map[string]interface{}{} }
