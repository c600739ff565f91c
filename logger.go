package cometd

import "github.com/sirupsen/logrus"

// Logger is the logging interface this package relies on throughout the
// session state machine, request builder, and retry coordinator.
type Logger interface {
	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})

	WithError(error) Logger
	WithField(key string, value interface{}) Logger
}

type nullLogger struct{}

func (*nullLogger) Debug(args ...interface{}) {}
func (*nullLogger) Info(args ...interface{})  {}
func (*nullLogger) Warn(args ...interface{})  {}
func (*nullLogger) Error(args ...interface{}) {}

func (l *nullLogger) WithError(error) Logger               { return l }
func (l *nullLogger) WithField(string, interface{}) Logger { return l }

func newNullLogger() Logger { return &nullLogger{} }

type logrusLogger struct {
	logrus.FieldLogger
}

// NewLogrusLogger adapts a logrus.FieldLogger for use as this package's
// Logger.
func NewLogrusLogger(l logrus.FieldLogger) Logger {
	return &logrusLogger{l}
}

func (w *logrusLogger) WithError(err error) Logger {
	return &logrusLogger{w.FieldLogger.WithError(err)}
}

func (w *logrusLogger) WithField(key string, value interface{}) Logger {
	return &logrusLogger{w.FieldLogger.WithField(key, value)}
}

func defaultLogger() Logger {
	log := logrus.New()
	log.SetLevel(logrus.InfoLevel)
	return NewLogrusLogger(log)
}
