// Package logging configures the process-wide slog handler.
package logging

import (
	"io"
	"log/slog"
)

// Log timestamps use the same fixed-width UTC layout as row timestamps so
// that sorting log lines lexicographically sorts them chronologically.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

func replaceTimestamp(groups []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey {
		formatted := a.Value.Time().UTC().Format(timestampLayout)
		return slog.Attr{Key: a.Key, Value: slog.StringValue(formatted)}
	}
	return a
}

func Options(addSource bool) *slog.HandlerOptions {
	return &slog.HandlerOptions{
		Level:       slog.LevelDebug,
		ReplaceAttr: replaceTimestamp,
		AddSource:   addSource,
	}
}

// Setup installs a json handler writing to w as the default slog logger.
func Setup(w io.Writer, addSource bool) {
	slog.SetDefault(slog.New(slog.NewJSONHandler(w, Options(addSource))))
}
