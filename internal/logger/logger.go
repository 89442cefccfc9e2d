package logger

import (
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger writes human-readable lines to the console and JSON lines to a
// rotating file, so batch runs leave a machine-parsable trail.
type Logger struct {
	console *logrus.Logger
	file    *logrus.Logger
}

var defaultLogger = newLogger()

func newLogger() *Logger {
	console := logrus.New()
	console.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	console.SetOutput(os.Stderr)
	console.SetLevel(logrus.InfoLevel)

	file := logrus.New()
	file.SetFormatter(&logrus.JSONFormatter{})
	file.SetLevel(logrus.InfoLevel)
	file.SetOutput(&lumberjack.Logger{
		Filename:   filepath.Join("logs", "crux.log"),
		MaxSize:    10, // MB
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	})

	return &Logger{console: console, file: file}
}

// SetVerbose enables debug-level console output.
func SetVerbose(verbose bool) {
	if verbose {
		defaultLogger.console.SetLevel(logrus.DebugLevel)
	} else {
		defaultLogger.console.SetLevel(logrus.InfoLevel)
	}
}

// Fields is re-exported so callers do not import logrus directly.
type Fields = logrus.Fields

func Debugf(format string, args ...any) {
	defaultLogger.console.Debugf(format, args...)
	defaultLogger.file.Debugf(format, args...)
}

func Infof(format string, args ...any) {
	defaultLogger.console.Infof(format, args...)
	defaultLogger.file.Infof(format, args...)
}

func Warnf(format string, args ...any) {
	defaultLogger.console.Warnf(format, args...)
	defaultLogger.file.Warnf(format, args...)
}

func Errorf(format string, args ...any) {
	defaultLogger.console.Errorf(format, args...)
	defaultLogger.file.Errorf(format, args...)
}

// WithFields logs a structured line at the given level on both sinks.
func WithFields(fields Fields) *Entry {
	return &Entry{fields: fields}
}

// Entry is a structured log line bound to a field set.
type Entry struct {
	fields Fields
}

func (e *Entry) Infof(format string, args ...any) {
	defaultLogger.console.WithFields(e.fields).Infof(format, args...)
	defaultLogger.file.WithFields(e.fields).Infof(format, args...)
}

func (e *Entry) Warnf(format string, args ...any) {
	defaultLogger.console.WithFields(e.fields).Warnf(format, args...)
	defaultLogger.file.WithFields(e.fields).Warnf(format, args...)
}

func (e *Entry) Debugf(format string, args ...any) {
	defaultLogger.console.WithFields(e.fields).Debugf(format, args...)
	defaultLogger.file.WithFields(e.fields).Debugf(format, args...)
}
