// Package log configures the process-wide slog logger.
package log

import (
	"io"
	"log/slog"
	"os"
)

// ParseLevel maps a level name to a slog level, defaulting to info.
func ParseLevel(logLevel string) slog.Level {
	switch logLevel {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Setup installs a text handler on stderr as the default logger.
func Setup(logLevel string) {
	SetupWithBuffer(logLevel, nil)
}

// SetupWithBuffer installs the default logger and, when buffer is not nil,
// mirrors every record into it.
func SetupWithBuffer(logLevel string, buffer *RingBuffer) {
	slog.SetDefault(slog.New(NewHandler(os.Stderr, ParseLevel(logLevel), buffer)))
}

// NewHandler returns a text handler writing to w, teeing records into buffer when set.
func NewHandler(w io.Writer, level slog.Level, buffer *RingBuffer) slog.Handler {
	handler := slog.Handler(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	}))

	if buffer != nil {
		handler = &bufferHandler{next: handler, buffer: buffer}
	}

	return handler
}

func WithModule(module string) *slog.Logger {
	return slog.With("module", module)
}
