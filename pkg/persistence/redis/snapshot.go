package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dukex/swimlane/pkg/models"
	goredis "github.com/redis/go-redis/v9"
)

// SnapshotRepository stores the snapshots of a process as fields of one hash.
type SnapshotRepository struct {
	client goredis.UniversalClient
}

// Save adds an immutable snapshot.
func (r *SnapshotRepository) Save(ctx context.Context, snapshot *models.Snapshot) error {
	if snapshot.CreatedAt.IsZero() {
		snapshot.CreatedAt = time.Now().UTC()
	}

	body, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot %s: %w", snapshot.ID, err)
	}

	if err := r.client.HSet(ctx, snapshotsKey+snapshot.ProcessID, snapshot.ID, body).Err(); err != nil {
		return fmt.Errorf("failed to save snapshot %s: %w", snapshot.ID, err)
	}

	return nil
}

// ListByProcess returns the snapshots of a process, newest version first.
func (r *SnapshotRepository) ListByProcess(ctx context.Context, processID string) ([]*models.Snapshot, error) {
	values, err := r.client.HGetAll(ctx, snapshotsKey+processID).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	snapshots := make([]*models.Snapshot, 0, len(values))

	for id, body := range values {
		var snapshot models.Snapshot
		if err := json.Unmarshal([]byte(body), &snapshot); err != nil {
			return nil, fmt.Errorf("failed to unmarshal snapshot %s: %w", id, err)
		}

		snapshots = append(snapshots, &snapshot)
	}

	sort.SliceStable(snapshots, func(i, j int) bool {
		if snapshots[i].Version != snapshots[j].Version {
			return snapshots[i].Version > snapshots[j].Version
		}

		return snapshots[i].CreatedAt.After(snapshots[j].CreatedAt)
	})

	return snapshots, nil
}

// GetByID returns a snapshot or nil when it does not exist.
func (r *SnapshotRepository) GetByID(ctx context.Context, processID, snapshotID string) (*models.Snapshot, error) {
	body, err := r.client.HGet(ctx, snapshotsKey+processID, snapshotID).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to fetch snapshot %s: %w", snapshotID, err)
	}

	var snapshot models.Snapshot
	if err := json.Unmarshal(body, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot %s: %w", snapshotID, err)
	}

	return &snapshot, nil
}

// Prune keeps the newest keep snapshots of a process and returns how many were removed.
func (r *SnapshotRepository) Prune(ctx context.Context, processID string, keep int) (int, error) {
	snapshots, err := r.ListByProcess(ctx, processID)
	if err != nil {
		return 0, err
	}

	keep = max(keep, 0)
	if len(snapshots) <= keep {
		return 0, nil
	}

	fields := make([]string, 0, len(snapshots)-keep)
	for _, snapshot := range snapshots[keep:] {
		fields = append(fields, snapshot.ID)
	}

	removed, err := r.client.HDel(ctx, snapshotsKey+processID, fields...).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to prune snapshots: %w", err)
	}

	return int(removed), nil
}

// DeleteByProcess removes every snapshot of a process.
func (r *SnapshotRepository) DeleteByProcess(ctx context.Context, processID string) error {
	if err := r.client.Del(ctx, snapshotsKey+processID).Err(); err != nil {
		return fmt.Errorf("failed to delete snapshots: %w", err)
	}

	return nil
}
