package log

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultBufferSize is the ring buffer capacity used by the API server.
const DefaultBufferSize = 500

// Entry is one buffered log record.
type Entry struct {
	Time    time.Time      `json:"time"`
	Level   string         `json:"level"`
	Message string         `json:"message"`
	Attrs   map[string]any `json:"attrs,omitempty"`
}

// RingBuffer keeps the most recent log entries. When full, Push evicts the oldest entry.
// It is owned by the hosting process and safe for concurrent use.
type RingBuffer struct {
	mu      sync.RWMutex
	entries []Entry
	next    int
	full    bool
}

// NewRingBuffer creates a buffer holding at most capacity entries.
func NewRingBuffer(capacity int) *RingBuffer {
	if capacity < 1 {
		capacity = 1
	}

	return &RingBuffer{entries: make([]Entry, capacity)}
}

// Push appends an entry, evicting the oldest one when the buffer is full.
func (b *RingBuffer) Push(entry Entry) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries[b.next] = entry
	b.next = (b.next + 1) % len(b.entries)

	if b.next == 0 {
		b.full = true
	}
}

// Entries returns the buffered entries from oldest to newest.
func (b *RingBuffer) Entries() []Entry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.full {
		out := make([]Entry, b.next)
		copy(out, b.entries[:b.next])

		return out
	}

	out := make([]Entry, 0, len(b.entries))
	out = append(out, b.entries[b.next:]...)
	out = append(out, b.entries[:b.next]...)

	return out
}

// Len returns the number of buffered entries.
func (b *RingBuffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.full {
		return len(b.entries)
	}

	return b.next
}

// Cap returns the buffer capacity.
func (b *RingBuffer) Cap() int {
	return len(b.entries)
}

// bufferHandler forwards records to next and pushes a copy into the buffer.
type bufferHandler struct {
	next   slog.Handler
	buffer *RingBuffer
	attrs  []slog.Attr
}

func (h *bufferHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *bufferHandler) Handle(ctx context.Context, record slog.Record) error {
	attrs := make(map[string]any, len(h.attrs)+record.NumAttrs())
	for _, attr := range h.attrs {
		attrs[attr.Key] = bufferedValue(attr.Value)
	}

	record.Attrs(func(attr slog.Attr) bool {
		attrs[attr.Key] = bufferedValue(attr.Value)

		return true
	})

	entry := Entry{
		Time:    record.Time,
		Level:   record.Level.String(),
		Message: record.Message,
	}

	if len(attrs) > 0 {
		entry.Attrs = attrs
	}

	h.buffer.Push(entry)

	return h.next.Handle(ctx, record)
}

// bufferedValue resolves LogValuers and converts values that do not encode
// meaningfully as JSON. Errors are kept as their message.
func bufferedValue(value slog.Value) any {
	value = value.Resolve()

	switch value.Kind() {
	case slog.KindGroup:
		group := make(map[string]any, len(value.Group()))
		for _, attr := range value.Group() {
			group[attr.Key] = bufferedValue(attr.Value)
		}

		return group
	case slog.KindDuration:
		return value.Duration().String()
	case slog.KindAny:
		if err, ok := value.Any().(error); ok {
			return err.Error()
		}

		return value.Any()
	default:
		return value.Any()
	}
}

func (h *bufferHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)

	return &bufferHandler{next: h.next.WithAttrs(attrs), buffer: h.buffer, attrs: merged}
}

// WithGroup keeps buffered attrs flat; grouping only affects the forwarded output.
func (h *bufferHandler) WithGroup(name string) slog.Handler {
	return &bufferHandler{next: h.next.WithGroup(name), buffer: h.buffer, attrs: h.attrs}
}
