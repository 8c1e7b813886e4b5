package web

import (
	"encoding/json"

	"github.com/dukex/swimlane/pkg/models"
)

// BuildRequest is the body of POST /build.
type BuildRequest struct {
	CompanyName string         `json:"company_name"`
	Answers     models.Answers `json:"answers"`
}

// GenerateProcessRequest is the body of POST /processes/generate.
type GenerateProcessRequest struct {
	ProcessID   string         `json:"process_id,omitempty"`
	Owner       string         `json:"owner"                validate:"required"`
	CompanyName string         `json:"company_name"`
	Answers     models.Answers `json:"answers"`
}

// ImportProcessRequest is the body of POST /processes/import. Graph holds the raw
// output of the external generation service.
type ImportProcessRequest struct {
	ProcessID   string          `json:"process_id,omitempty"`
	Owner       string          `json:"owner"                validate:"required"`
	CompanyName string          `json:"company_name"`
	Answers     models.Answers  `json:"answers,omitempty"`
	Label       string          `json:"label,omitempty"      validate:"omitempty,oneof=regeneration change-request rollback"`
	Graph       json.RawMessage `json:"graph"                validate:"required"`
}

// graphPayload accepts either a JSON graph object or a JSON string holding the
// generator's text output, possibly wrapped in code fences.
func (r ImportProcessRequest) graphPayload() []byte {
	var text string
	if err := json.Unmarshal(r.Graph, &text); err == nil {
		return []byte(text)
	}

	return r.Graph
}

// LogsResponse is the body of GET /logs.
type LogsResponse struct {
	Entries  []LogEntry `json:"entries"`
	Count    int        `json:"count"`
	Capacity int        `json:"capacity"`
}

// LogEntry mirrors one ring buffer entry.
type LogEntry struct {
	Time    string         `json:"time"`
	Level   string         `json:"level"`
	Message string         `json:"message"`
	Attrs   map[string]any `json:"attrs,omitempty"`
}
