package events_test

import (
	"encoding/json"
	"testing"

	"github.com/dukex/swimlane/pkg/events"
	"github.com/dukex/swimlane/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventTypes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		event  interface{ GetType() events.EventType }
		expect events.EventType
	}{
		{"generated", events.ProcessGenerated{}, events.ProcessGeneratedEvent},
		{"imported", events.ProcessImported{}, events.ProcessImportedEvent},
		{"rejected", events.ProcessRejected{}, events.ProcessRejectedEvent},
		{"rolled back", events.ProcessRolledBack{}, events.ProcessRolledBackEvent},
		{"deleted", events.ProcessDeleted{}, events.ProcessDeletedEvent},
		{"pruned", events.SnapshotsPruned{}, events.SnapshotsPrunedEvent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expect, tt.event.GetType())
		})
	}
}

func TestNewBaseEvent(t *testing.T) {
	t.Parallel()

	base := events.NewBaseEvent(events.ProcessGeneratedEvent, "p-1", "owner-1")

	assert.NotEmpty(t, base.ID)
	assert.Equal(t, events.ProcessGeneratedEvent, base.Type)
	assert.Equal(t, "p-1", base.ProcessID)
	assert.Equal(t, "owner-1", base.Owner)
	assert.False(t, base.Timestamp.IsZero())

	other := events.NewBaseEvent(events.ProcessGeneratedEvent, "p-1", "owner-1")
	assert.NotEqual(t, base.ID, other.ID)
}

func TestProcessGenerated_JSON(t *testing.T) {
	t.Parallel()

	event := events.ProcessGenerated{
		BaseEvent:   events.NewBaseEvent(events.ProcessGeneratedEvent, "p-1", "owner-1"),
		Version:     2,
		Source:      models.SourceBuilder,
		Score:       96,
		Regenerated: true,
	}

	payload, err := json.Marshal(event)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(payload, &fields))

	assert.Equal(t, "process.generated", fields["type"])
	assert.Equal(t, "p-1", fields["process_id"])
	assert.Equal(t, "builder", fields["source"])
	assert.InDelta(t, 2, fields["version"], 0)
	assert.Equal(t, true, fields["regenerated"])
}
