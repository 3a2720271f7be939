package logger

import (
	"fmt"
	"strings"
)

type Level int

const (
	TraceLevel Level = iota
	DebugLevel
	InfoLevel
	WarnLevel
	ErrorLevel
	OffLevel

	_minLevel = TraceLevel
	_maxLevel = OffLevel
)

func (l Level) String() string {
	switch l {
	case TraceLevel:
		return "trace"
	case DebugLevel:
		return "debug"
	case InfoLevel:
		return "info"
	case WarnLevel:
		return "warn"
	case ErrorLevel:
		return "error"
	case OffLevel:
		return "off"
	default:
		return "unknown"
	}
}

// ParseLevel converts a level name such as "debug" or "WARN" to a [Level].
func ParseLevel(name string) (Level, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for lvl := _minLevel; lvl <= _maxLevel; lvl++ {
		if lvl.String() == name {
			return lvl, nil
		}
	}
	if name == "warning" {
		return WarnLevel, nil
	}
	return OffLevel, fmt.Errorf("unknown log level %q", name)
}

type Sink interface {
	Log(lvl Level, f func() string)
	Level() Level
}

type Logger struct {
	Sink
}

// Discard returns a logger that drops every message.
func Discard() *Logger {
	sink, _ := NewSink(nil, OffLevel)
	return &Logger{sink}
}

func (l Logger) Trace(f func() string) {
	l.Log(TraceLevel, f)
}

func (l Logger) Debug(f func() string) {
	l.Log(DebugLevel, f)
}

func (l Logger) Info(f func() string) {
	l.Log(InfoLevel, f)
}

func (l Logger) Debugf(format string, values ...interface{}) {
	l.Log(DebugLevel, func() string {
		return fmt.Sprintf(format, values...)
	})
}

func (l Logger) Infof(format string, values ...interface{}) {
	l.Log(InfoLevel, func() string {
		return fmt.Sprintf(format, values...)
	})
}

func (l Logger) Warnf(format string, values ...interface{}) {
	l.Log(WarnLevel, func() string {
		return fmt.Sprintf(format, values...)
	})
}

func (l Logger) Errorf(format string, values ...interface{}) {
	l.Log(ErrorLevel, func() string {
		return fmt.Errorf(format, values...).Error()
	})
}
