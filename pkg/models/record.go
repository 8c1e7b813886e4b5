package models

import "time"

// Source identifies which producer created a process graph.
type Source string

const (
	SourceBuilder  Source = "builder"  // Deterministic fallback template
	SourceExternal Source = "external" // External generation service, admitted through intake
)

// Snapshot labels describing why a previous version was retained.
const (
	SnapshotLabelRegeneration  = "regeneration"
	SnapshotLabelChangeRequest = "change-request"
	SnapshotLabelRollback      = "rollback"
)

// Process is the persisted record around the current process graph of a company.
type Process struct {
	ID          string       `json:"id"`
	Owner       string       `json:"owner"        validate:"required"`
	CompanyName string       `json:"company_name"`
	Answers     Answers      `json:"answers,omitempty"`
	Source      Source       `json:"source"       validate:"required,oneof=builder external"`
	Version     int          `json:"version"`
	Data        *ProcessData `json:"data"         validate:"required"`
	Score       int          `json:"score"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Snapshot is an immutable historical version of a process graph.
type Snapshot struct {
	ID        string       `json:"id"`
	ProcessID string       `json:"process_id"`
	Version   int          `json:"version"`
	Label     string       `json:"label"`
	Source    Source       `json:"source"`
	Data      *ProcessData `json:"data"`
	CreatedAt time.Time    `json:"created_at"`
}
