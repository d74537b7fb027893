// Package logging builds the logger shared by the page store, services and
// transports. It reuses the Wails logger so GUI and headless modes log the
// same way.
package logging

import (
	"fmt"

	"github.com/wailsapp/wails/v2/pkg/logger"
)

// New returns a logger writing to file (stdout when file is empty) and
// dropping messages below level. Unknown levels fall back to info.
func New(level, file string) (logger.Logger, logger.LogLevel) {
	lvl, err := logger.StringToLogLevel(level)
	if err != nil {
		lvl = logger.INFO
	}
	var out logger.Logger
	if file != "" {
		out = logger.NewFileLogger(file)
	} else {
		out = logger.NewDefaultLogger()
	}
	return &levelLogger{out: out, level: lvl}, lvl
}

// levelLogger filters messages by level before handing them to out.
type levelLogger struct {
	out   logger.Logger
	level logger.LogLevel
}

func (l *levelLogger) Print(message string) { l.out.Print(message) }

func (l *levelLogger) Trace(message string) {
	if l.level <= logger.TRACE {
		l.out.Trace(message)
	}
}

func (l *levelLogger) Debug(message string) {
	if l.level <= logger.DEBUG {
		l.out.Debug(message)
	}
}

func (l *levelLogger) Info(message string) {
	if l.level <= logger.INFO {
		l.out.Info(message)
	}
}

func (l *levelLogger) Warning(message string) {
	if l.level <= logger.WARNING {
		l.out.Warning(message)
	}
}

func (l *levelLogger) Error(message string) {
	if l.level <= logger.ERROR {
		l.out.Error(message)
	}
}

func (l *levelLogger) Fatal(message string) { l.out.Fatal(message) }

// Discard returns a logger that drops everything. Used by tests.
func Discard() logger.Logger { return discard{} }

type discard struct{}

func (discard) Print(string)   {}
func (discard) Trace(string)   {}
func (discard) Debug(string)   {}
func (discard) Info(string)    {}
func (discard) Warning(string) {}
func (discard) Error(string)   {}
func (discard) Fatal(string)   {}

// Debugf, Infof, Warningf and Errorf mirror the wailsRuntime.Log*f helpers
// for code that only holds a logger.Logger.
func Debugf(l logger.Logger, format string, args ...any) {
	l.Debug(fmt.Sprintf(format, args...))
}

func Infof(l logger.Logger, format string, args ...any) {
	l.Info(fmt.Sprintf(format, args...))
}

func Warningf(l logger.Logger, format string, args ...any) {
	l.Warning(fmt.Sprintf(format, args...))
}

func Errorf(l logger.Logger, format string, args ...any) {
	l.Error(fmt.Sprintf(format, args...))
}
