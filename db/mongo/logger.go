package mongo

import (
	"context"
	"log/slog"

	"github.com/pure-golang/webcore/logger"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ options.LogSink = (*Logger)(nil)

// Logger forwards driver log records to slog under the "mongo" group.
type Logger struct {
	base *slog.Logger
}

func NewLogger(base *slog.Logger) *Logger {
	if base == nil {
		base = logger.Named(context.Background(), "mongo")
	}
	return &Logger{base: base}
}

// Info receives driver records; level 0 is info, anything above is debug.
func (l *Logger) Info(level int, msg string, keysAndValues ...interface{}) {
	lvl := slog.LevelInfo
	if level > 0 {
		lvl = slog.LevelDebug
	}
	l.base.Log(context.Background(), lvl, msg, keysAndValues...)
}

func (l *Logger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.base.With("error", err).Error(msg, keysAndValues...)
}

// loggerOptions returns nil when driver logging is off.
func loggerOptions(level string, sink options.LogSink) *options.LoggerOptions {
	var lvl options.LogLevel
	switch level {
	case "info":
		lvl = options.LogLevelInfo
	case "debug":
		lvl = options.LogLevelDebug
	default:
		return nil
	}

	return options.Logger().
		SetSink(sink).
		SetComponentLevel(options.LogComponentConnection, lvl).
		SetComponentLevel(options.LogComponentServerSelection, lvl).
		SetComponentLevel(options.LogComponentTopology, lvl)
}
