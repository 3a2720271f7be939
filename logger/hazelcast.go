package logger

import (
	hzlogger "github.com/hazelcast/hazelcast-go-client/logger"
)

type hazelcastBridge struct {
	sink Sink
}

// Hazelcast adapts the logger to the hazelcast client's logger interface, so the
// client's internal messages are filtered and written by the same sink.
func (l Logger) Hazelcast() hzlogger.Logger {
	return &hazelcastBridge{sink: l.Sink}
}

func (b *hazelcastBridge) Log(weight hzlogger.Weight, f func() string) {
	lvl := levelOfWeight(weight)
	if lvl == OffLevel {
		return
	}
	b.sink.Log(lvl, func() string {
		return "hazelcast: " + f()
	})
}

func levelOfWeight(weight hzlogger.Weight) Level {
	switch {
	case weight <= hzlogger.WeightOff:
		return OffLevel
	case weight <= hzlogger.WeightError:
		return ErrorLevel
	case weight <= hzlogger.WeightWarn:
		return WarnLevel
	case weight <= hzlogger.WeightInfo:
		return InfoLevel
	case weight <= hzlogger.WeightDebug:
		return DebugLevel
	default:
		return TraceLevel
	}
}
