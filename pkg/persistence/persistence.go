// Package persistence provides the storage abstraction for process records and their snapshots.
package persistence

import (
	"context"
	"sort"

	"github.com/dukex/swimlane/pkg/models"
)

// Persistence groups the repositories of one storage backend.
type Persistence interface {
	ProcessRepository() ProcessRepository
	SnapshotRepository() SnapshotRepository

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// ProcessRepository stores the current version of each process verbatim.
// GetByID returns nil, nil when the process does not exist.
type ProcessRepository interface {
	List(ctx context.Context, opts ListProcessesOptions) (*ProcessListResult, error)
	GetByID(ctx context.Context, id string) (*models.Process, error)
	Save(ctx context.Context, process *models.Process) error
	Delete(ctx context.Context, id string) error
}

// SnapshotRepository stores immutable historical versions. Snapshots are listed newest first.
// GetByID returns nil, nil when the snapshot does not exist.
type SnapshotRepository interface {
	Save(ctx context.Context, snapshot *models.Snapshot) error
	ListByProcess(ctx context.Context, processID string) ([]*models.Snapshot, error)
	GetByID(ctx context.Context, processID, snapshotID string) (*models.Snapshot, error)
	Prune(ctx context.Context, processID string, keep int) (int, error)
	DeleteByProcess(ctx context.Context, processID string) error
}

// ListProcessesOptions contains options for listing processes.
type ListProcessesOptions struct {
	Limit     int
	Offset    int
	OwnerID   string
	SortBy    string // created_at, updated_at or name
	SortOrder string // asc or desc
}

// ProcessListResult contains one page of processes.
type ProcessListResult struct {
	Processes   []*models.Process `json:"processes"`
	TotalCount  int64             `json:"total_count"`
	HasNextPage bool              `json:"has_next_page"`
}

// Sort fields accepted by every backend.
var AllowedSortFields = []string{"created_at", "updated_at", "name"}

// NormalizeListOptions applies defaults and checks the sort parameters.
func NormalizeListOptions(opts ListProcessesOptions) (ListProcessesOptions, error) {
	if opts.Limit <= 0 || opts.Limit > 100 {
		opts.Limit = 20
	}

	if opts.Offset < 0 {
		opts.Offset = 0
	}

	if opts.SortBy == "" {
		opts.SortBy = "created_at"
	}

	if opts.SortOrder == "" {
		opts.SortOrder = "desc"
	}

	valid := false

	for _, field := range AllowedSortFields {
		if field == opts.SortBy {
			valid = true

			break
		}
	}

	if !valid {
		return opts, ErrInvalidSortField
	}

	if opts.SortOrder != "asc" && opts.SortOrder != "desc" {
		return opts, ErrInvalidSortOrder
	}

	return opts, nil
}

// FilterAndPage applies the owner filter, sorting and pagination of opts in memory.
// It is used by backends that cannot query on those fields natively.
func FilterAndPage(all []*models.Process, opts ListProcessesOptions) *ProcessListResult {
	filtered := make([]*models.Process, 0, len(all))

	for _, process := range all {
		if opts.OwnerID != "" && process.Owner != opts.OwnerID {
			continue
		}

		filtered = append(filtered, process)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		var less bool

		switch opts.SortBy {
		case "updated_at":
			less = filtered[i].UpdatedAt.Before(filtered[j].UpdatedAt)
		case "name":
			less = processName(filtered[i]) < processName(filtered[j])
		default:
			less = filtered[i].CreatedAt.Before(filtered[j].CreatedAt)
		}

		if opts.SortOrder == "desc" {
			return !less
		}

		return less
	})

	totalCount := int64(len(filtered))

	if opts.Offset >= len(filtered) {
		return &ProcessListResult{
			Processes:  make([]*models.Process, 0),
			TotalCount: totalCount,
		}
	}

	end := min(opts.Offset+opts.Limit, len(filtered))

	return &ProcessListResult{
		Processes:   filtered[opts.Offset:end],
		TotalCount:  totalCount,
		HasNextPage: end < len(filtered),
	}
}

func processName(process *models.Process) string {
	if process.Data == nil {
		return ""
	}

	return process.Data.Name
}
