// Package events defines the lifecycle notifications published when stored processes change.
package events

import (
	"time"

	"github.com/dukex/swimlane/pkg/models"
	"github.com/google/uuid"
)

type EventType string

// Topic carries every process lifecycle event.
const Topic = "swimlane.process.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	ProcessGeneratedEvent  EventType = "process.generated"
	ProcessImportedEvent   EventType = "process.imported"
	ProcessRejectedEvent   EventType = "process.rejected"
	ProcessRolledBackEvent EventType = "process.rolled_back"
	ProcessDeletedEvent    EventType = "process.deleted"
	SnapshotsPrunedEvent   EventType = "snapshots.pruned"
)

type BaseEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	ProcessID string    `json:"process_id"`
	Owner     string    `json:"owner,omitempty"`
}

// NewBaseEvent stamps a new event with a fresh ID and the current UTC time.
func NewBaseEvent(eventType EventType, processID, owner string) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		ProcessID: processID,
		Owner:     owner,
	}
}

// ProcessGenerated is published after the builder produced a new current version.
type ProcessGenerated struct {
	BaseEvent

	Version     int           `json:"version"`
	Source      models.Source `json:"source"`
	Score       int           `json:"score"`
	Regenerated bool          `json:"regenerated"`
}

func (e ProcessGenerated) GetType() EventType {
	return ProcessGeneratedEvent
}

// ProcessImported is published after an external graph was admitted and stored.
type ProcessImported struct {
	BaseEvent

	Version int    `json:"version"`
	Score   int    `json:"score"`
	Label   string `json:"label,omitempty"`
}

func (e ProcessImported) GetType() EventType {
	return ProcessImportedEvent
}

// ProcessRejected is published when an external graph failed error-severity checks.
type ProcessRejected struct {
	BaseEvent

	Score        int      `json:"score"`
	FailedChecks []string `json:"failed_checks"`
}

func (e ProcessRejected) GetType() EventType {
	return ProcessRejectedEvent
}

// ProcessRolledBack is published after a snapshot became the current version.
type ProcessRolledBack struct {
	BaseEvent

	SnapshotID  string `json:"snapshot_id"`
	FromVersion int    `json:"from_version"`
	ToVersion   int    `json:"to_version"`
}

func (e ProcessRolledBack) GetType() EventType {
	return ProcessRolledBackEvent
}

type ProcessDeleted struct {
	BaseEvent
}

func (e ProcessDeleted) GetType() EventType {
	return ProcessDeletedEvent
}

// SnapshotsPruned is published by the retention job for each process it trimmed.
type SnapshotsPruned struct {
	BaseEvent

	Removed int `json:"removed"`
	Kept    int `json:"kept"`
}

func (e SnapshotsPruned) GetType() EventType {
	return SnapshotsPrunedEvent
}
