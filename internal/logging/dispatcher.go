package logging

import (
	"log/slog"

	"github.com/rs/zerolog"
)

// DispatcherLogger lets the event dispatcher log through zerolog. Records
// carry component=dispatcher.
type DispatcherLogger struct {
	logger zerolog.Logger
}

// NewDispatcherLogger wraps logger.
func NewDispatcherLogger(logger zerolog.Logger) *DispatcherLogger {
	return &DispatcherLogger{logger: logger.With().Str("component", "dispatcher").Logger()}
}

func (l *DispatcherLogger) Debug(msg string, keysAndValues ...any) {
	l.log(l.logger.Debug(), msg, keysAndValues)
}

func (l *DispatcherLogger) Info(msg string, keysAndValues ...any) {
	l.log(l.logger.Info(), msg, keysAndValues)
}

func (l *DispatcherLogger) Error(msg string, keysAndValues ...any) {
	l.log(l.logger.Error(), msg, keysAndValues)
}

func (l *DispatcherLogger) log(e *zerolog.Event, msg string, keysAndValues []any) {
	if e == nil {
		return
	}
	e.Fields(toFields(keysAndValues)).Msg(msg)
}

// toFields turns slog-style arguments into a zerolog field map. Arguments
// are key/value pairs or slog.Attr values; an error under the "error" key
// is stored as its message.
func toFields(args []any) map[string]any {
	fields := make(map[string]any, len(args)/2)
	for i := 0; i < len(args); {
		if a, ok := args[i].(slog.Attr); ok {
			fields[a.Key] = a.Value.Any()
			i++
			continue
		}
		if i+1 >= len(args) {
			break
		}
		if key, ok := args[i].(string); ok {
			fields[key] = args[i+1]
			if err, isErr := args[i+1].(error); isErr && err != nil {
				fields[key] = err.Error()
			}
		}
		i += 2
	}
	return fields
}
