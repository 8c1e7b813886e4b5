package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/dukex/swimlane/pkg/models"
)

// SnapshotRepository stores each snapshot as <root>/snapshots/<process id>/<snapshot id>.json.
type SnapshotRepository struct {
	root string
	mu   sync.RWMutex
}

// NewSnapshotRepository creates a new snapshot repository.
func NewSnapshotRepository(root string) *SnapshotRepository {
	return &SnapshotRepository{root: root}
}

func (sr *SnapshotRepository) dir(processID string) string {
	return filepath.Clean(path.Join(sr.root, "snapshots", processID))
}

// Save writes an immutable snapshot.
func (sr *SnapshotRepository) Save(_ context.Context, snapshot *models.Snapshot) error {
	sr.mu.Lock()
	defer sr.mu.Unlock()

	dir := sr.dir(snapshot.ProcessID)

	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create snapshots directory: %w", err)
	}

	if snapshot.CreatedAt.IsZero() {
		snapshot.CreatedAt = time.Now().UTC()
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot %s: %w", snapshot.ID, err)
	}

	return os.WriteFile(path.Join(dir, snapshot.ID+".json"), data, 0600)
}

// ListByProcess returns the snapshots of a process, newest version first.
func (sr *SnapshotRepository) ListByProcess(_ context.Context, processID string) ([]*models.Snapshot, error) {
	sr.mu.RLock()
	defer sr.mu.RUnlock()

	return sr.list(processID)
}

func (sr *SnapshotRepository) list(processID string) ([]*models.Snapshot, error) {
	jsonFiles, err := fs.Glob(os.DirFS(sr.dir(processID)), "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshot files: %w", err)
	}

	snapshots := make([]*models.Snapshot, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		snapshot, err := sr.read(path.Join(sr.dir(processID), file))
		if err != nil {
			return nil, err
		}

		if snapshot != nil {
			snapshots = append(snapshots, snapshot)
		}
	}

	sort.SliceStable(snapshots, func(i, j int) bool {
		if snapshots[i].Version != snapshots[j].Version {
			return snapshots[i].Version > snapshots[j].Version
		}

		return snapshots[i].CreatedAt.After(snapshots[j].CreatedAt)
	})

	return snapshots, nil
}

// GetByID retrieves a single snapshot of a process.
func (sr *SnapshotRepository) GetByID(_ context.Context, processID, snapshotID string) (*models.Snapshot, error) {
	sr.mu.RLock()
	defer sr.mu.RUnlock()

	return sr.read(path.Join(sr.dir(processID), snapshotID+".json"))
}

func (sr *SnapshotRepository) read(filePath string) (*models.Snapshot, error) {
	body, err := os.ReadFile(filepath.Clean(filePath))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to fetch snapshot %s: %w", filePath, err)
	}

	var snapshot models.Snapshot

	if err := json.Unmarshal(body, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot %s: %w", filePath, err)
	}

	return &snapshot, nil
}

// Prune keeps the newest keep snapshots of a process and returns how many were removed.
func (sr *SnapshotRepository) Prune(_ context.Context, processID string, keep int) (int, error) {
	sr.mu.Lock()
	defer sr.mu.Unlock()

	snapshots, err := sr.list(processID)
	if err != nil {
		return 0, err
	}

	if keep < 0 {
		keep = 0
	}

	removed := 0

	for _, snapshot := range snapshots[min(keep, len(snapshots)):] {
		err := os.Remove(path.Join(sr.dir(processID), snapshot.ID+".json"))
		if err != nil && !os.IsNotExist(err) {
			return removed, fmt.Errorf("failed to delete snapshot %s: %w", snapshot.ID, err)
		}

		removed++
	}

	return removed, nil
}

// DeleteByProcess removes every snapshot of a process.
func (sr *SnapshotRepository) DeleteByProcess(_ context.Context, processID string) error {
	sr.mu.Lock()
	defer sr.mu.Unlock()

	if err := os.RemoveAll(sr.dir(processID)); err != nil {
		return fmt.Errorf("failed to delete snapshots of process %s: %w", processID, err)
	}

	return nil
}
