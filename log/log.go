// Package log holds the process wide logger.
// The default logger is a nop, library consumers stay silent unless they opt in.
package log

import (
	"go.uber.org/zap"
)

var Logger = zap.NewNop().Sugar()

// SetLogger replaces the package logger.
func SetLogger(l *zap.SugaredLogger) {
	Logger = l
}

// EnableDebug switches to a development logger writing to stderr.
func EnableDebug() error {
	l, err := zap.NewDevelopment()
	if err != nil {
		return err
	}
	Logger = l.Sugar()
	return nil
}
