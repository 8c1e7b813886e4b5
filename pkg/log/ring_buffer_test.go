package log_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/dukex/swimlane/pkg/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingBuffer_PushAndEvict(t *testing.T) {
	t.Parallel()

	buffer := log.NewRingBuffer(3)
	assert.Equal(t, 0, buffer.Len())
	assert.Empty(t, buffer.Entries())

	for i := 1; i <= 5; i++ {
		buffer.Push(log.Entry{Message: fmt.Sprintf("m%d", i)})
	}

	require.Equal(t, 3, buffer.Len())
	assert.Equal(t, 3, buffer.Cap())

	entries := buffer.Entries()
	messages := []string{entries[0].Message, entries[1].Message, entries[2].Message}
	assert.Equal(t, []string{"m3", "m4", "m5"}, messages)
}

func TestRingBuffer_PartialFill(t *testing.T) {
	t.Parallel()

	buffer := log.NewRingBuffer(4)
	buffer.Push(log.Entry{Message: "a"})
	buffer.Push(log.Entry{Message: "b"})

	entries := buffer.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].Message)
	assert.Equal(t, "b", entries[1].Message)
}

func TestRingBuffer_MinimumCapacity(t *testing.T) {
	t.Parallel()

	buffer := log.NewRingBuffer(0)
	buffer.Push(log.Entry{Message: "a"})
	buffer.Push(log.Entry{Message: "b"})

	entries := buffer.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "b", entries[0].Message)
}

func TestRingBuffer_ConcurrentPush(t *testing.T) {
	t.Parallel()

	buffer := log.NewRingBuffer(50)

	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for j := 0; j < 20; j++ {
				buffer.Push(log.Entry{Message: "x"})
			}
		}()
	}

	wg.Wait()

	assert.Equal(t, 50, buffer.Len())
}

func TestHandler_TeesIntoBuffer(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	buffer := log.NewRingBuffer(10)
	logger := slog.New(log.NewHandler(&out, slog.LevelInfo, buffer)).With("module", "test")

	logger.Debug("hidden")
	logger.Info("process generated", "process_id", "p-1")

	entries := buffer.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "process generated", entries[0].Message)
	assert.Equal(t, "INFO", entries[0].Level)
	assert.Equal(t, "test", entries[0].Attrs["module"])
	assert.Equal(t, "p-1", entries[0].Attrs["process_id"])
	assert.Contains(t, out.String(), "process generated")
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.LevelDebug, log.ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, log.ParseLevel("warn"))
	assert.Equal(t, slog.LevelError, log.ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, log.ParseLevel("verbose"))
}

type ownerRef struct {
	id string
}

func (o ownerRef) LogValue() slog.Value {
	return slog.StringValue("owner:" + o.id)
}

func TestHandler_BuffersReadableValues(t *testing.T) {
	t.Parallel()

	buffer := log.NewRingBuffer(10)
	logger := slog.New(log.NewHandler(io.Discard, slog.LevelInfo, buffer))

	logger.Error("Failed to publish event",
		"error", errors.New("broker unavailable"),
		"owner", ownerRef{id: "owner-1"},
		"elapsed", 1500*time.Millisecond,
		slog.Group("process", "id", "p-1", "version", 2),
	)

	entries := buffer.Entries()
	require.Len(t, entries, 1)

	attrs := entries[0].Attrs
	assert.Equal(t, "broker unavailable", attrs["error"])
	assert.Equal(t, "owner:owner-1", attrs["owner"])
	assert.Equal(t, "1.5s", attrs["elapsed"])
	assert.Equal(t, map[string]any{"id": "p-1", "version": int64(2)}, attrs["process"])

	encoded, err := json.Marshal(entries[0])
	require.NoError(t, err)
	assert.Contains(t, string(encoded), `"error":"broker unavailable"`)
}
