// Package retention trims snapshot history on a cron schedule.
package retention

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dukex/swimlane/pkg/eventbus"
	"github.com/dukex/swimlane/pkg/events"
	"github.com/dukex/swimlane/pkg/persistence"
	"github.com/robfig/cron/v3"
)

// DefaultSchedule runs the job once a day at 03:00.
const DefaultSchedule = "0 3 * * *"

const pageSize = 100

// Job keeps at most Keep snapshots per process.
type Job struct {
	persistence persistence.Persistence
	publisher   eventbus.EventPublisher
	logger      *slog.Logger
	schedule    string
	keep        int

	mu   sync.Mutex
	cron *cron.Cron
}

// NewJob validates the schedule and returns a job that is not yet started.
func NewJob(
	p persistence.Persistence,
	publisher eventbus.EventPublisher,
	logger *slog.Logger,
	schedule string,
	keep int,
) (*Job, error) {
	if keep < 1 {
		return nil, errors.New("snapshot retention must keep at least one snapshot")
	}

	if schedule == "" {
		schedule = DefaultSchedule
	}

	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("invalid retention schedule '%s': %w", schedule, err)
	}

	if publisher == nil {
		publisher = eventbus.Noop{}
	}

	return &Job{
		persistence: p,
		publisher:   publisher,
		logger:      logger.With("module", "snapshot_retention"),
		schedule:    schedule,
		keep:        keep,
	}, nil
}

// Start registers the job with a cron scheduler and starts it.
func (j *Job) Start(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.cron = cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DefaultLogger),
		cron.Recover(cron.DefaultLogger),
	))

	entryID, err := j.cron.AddFunc(j.schedule, func() {
		if _, err := j.RunOnce(ctx); err != nil {
			j.logger.ErrorContext(ctx, "Snapshot retention failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to add retention job: %w", err)
	}

	j.cron.Start()
	j.logger.InfoContext(ctx, "Snapshot retention scheduled", "cron", j.schedule, "keep", j.keep, "entry_id", entryID)

	return nil
}

// Stop halts the scheduler and waits for a running pass to finish.
func (j *Job) Stop(ctx context.Context) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.cron == nil {
		return
	}

	<-j.cron.Stop().Done()
	j.cron = nil

	j.logger.InfoContext(ctx, "Snapshot retention stopped")
}

// RunOnce prunes every process and returns the number of removed snapshots.
func (j *Job) RunOnce(ctx context.Context) (int, error) {
	total := 0
	offset := 0

	for {
		page, err := j.persistence.ProcessRepository().List(ctx, persistence.ListProcessesOptions{
			Limit:     pageSize,
			Offset:    offset,
			SortBy:    "created_at",
			SortOrder: "asc",
		})
		if err != nil {
			return total, fmt.Errorf("failed to list processes: %w", err)
		}

		for _, process := range page.Processes {
			removed, err := j.persistence.SnapshotRepository().Prune(ctx, process.ID, j.keep)
			if err != nil {
				return total, fmt.Errorf("failed to prune snapshots of %s: %w", process.ID, err)
			}

			if removed == 0 {
				continue
			}

			total += removed

			j.logger.DebugContext(ctx, "Pruned snapshots", "process_id", process.ID, "removed", removed)

			event := events.SnapshotsPruned{
				BaseEvent: events.NewBaseEvent(events.SnapshotsPrunedEvent, process.ID, process.Owner),
				Removed:   removed,
				Kept:      j.keep,
			}
			if err := j.publisher.Publish(ctx, process.ID, event); err != nil {
				j.logger.ErrorContext(ctx, "Failed to publish event", "event_type", event.GetType(), "error", err)
			}
		}

		if !page.HasNextPage {
			break
		}

		offset += len(page.Processes)
	}

	j.logger.InfoContext(ctx, "Snapshot retention pass completed", "removed", total)

	return total, nil
}
