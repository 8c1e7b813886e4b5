package file_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dukex/swimlane/pkg/builder"
	"github.com/dukex/swimlane/pkg/models"
	"github.com/dukex/swimlane/pkg/persistence"
	"github.com/dukex/swimlane/pkg/persistence/file"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProcess(id, owner string) *models.Process {
	return &models.Process{
		ID:          id,
		Owner:       owner,
		CompanyName: "Ромашка",
		Answers:     models.Answers{"goal": "Выполнить заказ"},
		Source:      models.SourceBuilder,
		Version:     1,
		Data:        builder.Build(models.Answers{"goal": "Выполнить заказ"}, "Ромашка"),
		Score:       96,
	}
}

func TestPersistence_HealthCheck(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	healthy := file.NewPersistence("file://" + t.TempDir())
	require.NoError(t, healthy.HealthCheck(ctx))

	missing := file.NewPersistence(filepath.Join(t.TempDir(), "missing"))
	require.ErrorIs(t, missing.HealthCheck(ctx), os.ErrNotExist)

	require.NoError(t, healthy.Close(ctx))
}

func TestProcessRepository_SaveAndGet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := file.NewPersistence(t.TempDir()).ProcessRepository()

	process := newProcess("p-1", "owner-1")
	require.NoError(t, repo.Save(ctx, process))
	assert.False(t, process.CreatedAt.IsZero())
	assert.False(t, process.UpdatedAt.IsZero())

	loaded, err := repo.GetByID(ctx, "p-1")
	require.NoError(t, err)
	require.NotNil(t, loaded)

	assert.Equal(t, process.Data, loaded.Data)
	assert.Equal(t, process.Answers, loaded.Answers)
	assert.Equal(t, 96, loaded.Score)

	missing, err := repo.GetByID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestProcessRepository_Delete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := file.NewPersistence(t.TempDir()).ProcessRepository()

	require.NoError(t, repo.Save(ctx, newProcess("p-1", "owner-1")))
	require.NoError(t, repo.Delete(ctx, "p-1"))

	err := repo.Delete(ctx, "p-1")
	require.Error(t, err)
	assert.True(t, persistence.IsProcessNotFound(err))
}

func TestProcessRepository_List(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := file.NewPersistence(t.TempDir()).ProcessRepository()

	empty, err := repo.List(ctx, persistence.ListProcessesOptions{})
	require.NoError(t, err)
	assert.Empty(t, empty.Processes)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := range 5 {
		owner := "owner-a"
		if i%2 == 1 {
			owner = "owner-b"
		}

		process := newProcess(fmt.Sprintf("p-%d", i), owner)
		process.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, repo.Save(ctx, process))
	}

	tests := []struct {
		name     string
		opts     persistence.ListProcessesOptions
		wantIDs  []string
		wantNext bool
		total    int64
	}{
		{
			name:    "newest first by default",
			opts:    persistence.ListProcessesOptions{},
			wantIDs: []string{"p-4", "p-3", "p-2", "p-1", "p-0"},
			total:   5,
		},
		{
			name:    "owner filter",
			opts:    persistence.ListProcessesOptions{OwnerID: "owner-b", SortOrder: "asc"},
			wantIDs: []string{"p-1", "p-3"},
			total:   2,
		},
		{
			name:     "pagination",
			opts:     persistence.ListProcessesOptions{Limit: 2, Offset: 1, SortOrder: "asc"},
			wantIDs:  []string{"p-1", "p-2"},
			wantNext: true,
			total:    5,
		},
		{
			name:    "offset past end",
			opts:    persistence.ListProcessesOptions{Offset: 10},
			wantIDs: []string{},
			total:   5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := repo.List(ctx, tt.opts)
			require.NoError(t, err)

			ids := make([]string, 0, len(result.Processes))
			for _, process := range result.Processes {
				ids = append(ids, process.ID)
			}

			assert.Equal(t, tt.wantIDs, ids)
			assert.Equal(t, tt.wantNext, result.HasNextPage)
			assert.Equal(t, tt.total, result.TotalCount)
		})
	}

	_, err = repo.List(ctx, persistence.ListProcessesOptions{SortBy: "score"})
	require.ErrorIs(t, err, persistence.ErrInvalidSortField)
}

func TestSnapshotRepository(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := file.NewPersistence(t.TempDir()).SnapshotRepository()

	empty, err := repo.ListByProcess(ctx, "p-1")
	require.NoError(t, err)
	assert.Empty(t, empty)

	data := builder.Build(nil, "")

	for version := 1; version <= 4; version++ {
		require.NoError(t, repo.Save(ctx, &models.Snapshot{
			ID:        fmt.Sprintf("s-%d", version),
			ProcessID: "p-1",
			Version:   version,
			Label:     models.SnapshotLabelRegeneration,
			Source:    models.SourceBuilder,
			Data:      data,
		}))
	}

	snapshots, err := repo.ListByProcess(ctx, "p-1")
	require.NoError(t, err)
	require.Len(t, snapshots, 4)
	assert.Equal(t, "s-4", snapshots[0].ID)
	assert.Equal(t, "s-1", snapshots[3].ID)

	snapshot, err := repo.GetByID(ctx, "p-1", "s-2")
	require.NoError(t, err)
	require.NotNil(t, snapshot)
	assert.Equal(t, 2, snapshot.Version)
	assert.Equal(t, data, snapshot.Data)

	missing, err := repo.GetByID(ctx, "p-1", "s-9")
	require.NoError(t, err)
	assert.Nil(t, missing)

	removed, err := repo.Prune(ctx, "p-1", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	snapshots, err = repo.ListByProcess(ctx, "p-1")
	require.NoError(t, err)
	require.Len(t, snapshots, 2)
	assert.Equal(t, "s-4", snapshots[0].ID)
	assert.Equal(t, "s-3", snapshots[1].ID)

	removed, err = repo.Prune(ctx, "p-1", 5)
	require.NoError(t, err)
	assert.Zero(t, removed)

	require.NoError(t, repo.DeleteByProcess(ctx, "p-1"))

	snapshots, err = repo.ListByProcess(ctx, "p-1")
	require.NoError(t, err)
	assert.Empty(t, snapshots)
}
