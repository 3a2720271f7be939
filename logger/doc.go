/*
Package logger provides logging for the go-hzcloud client and its demo workloads.

Log levels for the logger.Logger are:
  - TraceLevel : The finest level, traces every map and SQL call. Do not use in production.
  - DebugLevel : Connection bootstrap details and skipped results.
  - InfoLevel  : Lifecycle messages: connecting, connected, closing.
  - WarnLevel  : Failed operations the map demo recovers from.
  - ErrorLevel : Failures that terminate a workload.
  - OffLevel   : Do not log anything.

TraceLevel < DebugLevel < InfoLevel < WarnLevel < ErrorLevel < OffLevel.
If the sink's level is larger than a level of the logging message the sink must produce no output.

A custom sink implements logger.Sink

	type Sink interface {
		Log(lvl Level, f func() string)
		Level() Level
	}

or the default wrapper around log.Logger can be created with [logger.NewSink].
The same sink also receives the hazelcast client's internal messages, see [Logger.Hazelcast].
*/
package logger
