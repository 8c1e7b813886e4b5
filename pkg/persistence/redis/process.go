package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dukex/swimlane/pkg/models"
	"github.com/dukex/swimlane/pkg/persistence"
	goredis "github.com/redis/go-redis/v9"
)

// ProcessRepository stores processes as JSON strings indexed by a set of IDs.
type ProcessRepository struct {
	client goredis.UniversalClient
}

// List loads every indexed process and pages them in memory.
func (r *ProcessRepository) List(ctx context.Context, opts persistence.ListProcessesOptions) (*persistence.ProcessListResult, error) {
	opts, err := persistence.NormalizeListOptions(opts)
	if err != nil {
		return nil, err
	}

	ids, err := r.client.SMembers(ctx, processIndex).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list process ids: %w", err)
	}

	all := make([]*models.Process, 0, len(ids))

	if len(ids) > 0 {
		keys := make([]string, 0, len(ids))
		for _, id := range ids {
			keys = append(keys, processKey+id)
		}

		values, err := r.client.MGet(ctx, keys...).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to load processes: %w", err)
		}

		for i, value := range values {
			body, ok := value.(string)
			if !ok {
				continue
			}

			var process models.Process
			if err := json.Unmarshal([]byte(body), &process); err != nil {
				return nil, fmt.Errorf("failed to unmarshal process %s: %w", ids[i], err)
			}

			all = append(all, &process)
		}
	}

	return persistence.FilterAndPage(all, opts), nil
}

// GetByID returns a process or nil when the key does not exist.
func (r *ProcessRepository) GetByID(ctx context.Context, id string) (*models.Process, error) {
	body, err := r.client.Get(ctx, processKey+id).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to fetch process %s: %w", id, err)
	}

	var process models.Process
	if err := json.Unmarshal(body, &process); err != nil {
		return nil, fmt.Errorf("failed to unmarshal process %s: %w", id, err)
	}

	return &process, nil
}

// Save writes the process and indexes its ID in one transaction.
func (r *ProcessRepository) Save(ctx context.Context, process *models.Process) error {
	now := time.Now().UTC()
	if process.CreatedAt.IsZero() {
		process.CreatedAt = now
	}

	process.UpdatedAt = now

	body, err := json.Marshal(process)
	if err != nil {
		return fmt.Errorf("failed to marshal process %s: %w", process.ID, err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Set(ctx, processKey+process.ID, body, 0)
		pipe.SAdd(ctx, processIndex, process.ID)

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save process %s: %w", process.ID, err)
	}

	return nil
}

// Delete removes the process together with its snapshots.
func (r *ProcessRepository) Delete(ctx context.Context, id string) error {
	var deleted *goredis.IntCmd

	_, err := r.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		deleted = pipe.Del(ctx, processKey+id)
		pipe.Del(ctx, snapshotsKey+id)
		pipe.SRem(ctx, processIndex, id)

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete process %s: %w", id, err)
	}

	if deleted.Val() == 0 {
		return persistence.NewProcessError("Delete", id, persistence.ErrProcessNotFound)
	}

	return nil
}
