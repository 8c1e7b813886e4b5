package postgresql_test

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/dukex/swimlane/pkg/builder"
	"github.com/dukex/swimlane/pkg/models"
	"github.com/dukex/swimlane/pkg/persistence"
	"github.com/dukex/swimlane/pkg/persistence/postgresql"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

var postgresContainer *postgres.PostgresContainer

func dropDb(ctx context.Context, t *testing.T, databaseURL string) {
	t.Helper()

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	for _, table := range []string{"process_snapshots", "processes", "schema_migrations"} {
		_, err = db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE")
		require.NoError(t, err)
	}

	require.NoError(t, db.Close())
}

func setupTestDB(t *testing.T) (*postgresql.Persistence, context.Context, string) {
	t.Helper()

	if os.Getenv("SWIMLANE_POSTGRES_TESTS") != "1" {
		t.Skip("set SWIMLANE_POSTGRES_TESTS=1 to run PostgreSQL tests")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)

	if postgresContainer == nil || !postgresContainer.IsRunning() {
		var err error

		postgresContainer, err = postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("swimlane_test"),
			postgres.WithUsername("swimlane"),
			postgres.WithPassword("swimlane"),
			postgres.BasicWaitStrategies(),
		)
		require.NoError(t, err)
	}

	databaseURL, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	dropDb(ctx, t, databaseURL)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	p, err := postgresql.NewPersistence(ctx, logger, databaseURL)
	require.NoError(t, err)

	t.Cleanup(func() {
		dropDb(ctx, t, databaseURL)
		require.NoError(t, p.Close(ctx))
		cancel()
	})

	return p, ctx, databaseURL
}

func newProcess(owner string) *models.Process {
	answers := models.Answers{"goal": "Выполнить заказ"}

	return &models.Process{
		ID:          uuid.NewString(),
		Owner:       owner,
		CompanyName: "Ромашка",
		Answers:     answers,
		Source:      models.SourceBuilder,
		Version:     1,
		Data:        builder.Build(answers, "Ромашка"),
		Score:       96,
	}
}

func TestNewPersistence_Migrations(t *testing.T) {
	p, ctx, databaseURL := setupTestDB(t)

	require.NoError(t, p.HealthCheck(ctx))

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	defer db.Close()

	var version int

	err = db.QueryRowContext(ctx, "SELECT MAX(version) FROM schema_migrations").Scan(&version)
	require.NoError(t, err)
	assert.Equal(t, 2, version)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	again, err := postgresql.NewPersistence(ctx, logger, databaseURL)
	require.NoError(t, err)
	require.NoError(t, again.Close(ctx))
}

func TestProcessRepository_Lifecycle(t *testing.T) {
	p, ctx, _ := setupTestDB(t)
	repo := p.ProcessRepository()

	process := newProcess("owner-1")
	require.NoError(t, repo.Save(ctx, process))

	loaded, err := repo.GetByID(ctx, process.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, process.Data, loaded.Data)
	assert.Equal(t, process.Answers, loaded.Answers)
	assert.Equal(t, models.SourceBuilder, loaded.Source)

	process.Version = 2
	process.Score = 80
	require.NoError(t, repo.Save(ctx, process))

	loaded, err = repo.GetByID(ctx, process.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Version)
	assert.Equal(t, 80, loaded.Score)

	require.NoError(t, repo.Delete(ctx, process.ID))

	loaded, err = repo.GetByID(ctx, process.ID)
	require.NoError(t, err)
	assert.Nil(t, loaded)

	err = repo.Delete(ctx, process.ID)
	assert.True(t, persistence.IsProcessNotFound(err))
}

func TestProcessRepository_List(t *testing.T) {
	p, ctx, _ := setupTestDB(t)
	repo := p.ProcessRepository()

	for i := range 3 {
		process := newProcess(fmt.Sprintf("owner-%d", i%2))
		process.CreatedAt = time.Date(2026, 1, 1, i, 0, 0, 0, time.UTC)
		require.NoError(t, repo.Save(ctx, process))
	}

	all, err := repo.List(ctx, persistence.ListProcessesOptions{})
	require.NoError(t, err)
	assert.Len(t, all.Processes, 3)
	assert.Equal(t, int64(3), all.TotalCount)

	owned, err := repo.List(ctx, persistence.ListProcessesOptions{OwnerID: "owner-0", Limit: 1})
	require.NoError(t, err)
	assert.Len(t, owned.Processes, 1)
	assert.Equal(t, int64(2), owned.TotalCount)
	assert.True(t, owned.HasNextPage)

	_, err = repo.List(ctx, persistence.ListProcessesOptions{SortBy: "name; DROP TABLE processes; --"})
	require.ErrorIs(t, err, persistence.ErrInvalidSortField)
}

func TestSnapshotRepository_Lifecycle(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	process := newProcess("owner-1")
	require.NoError(t, p.ProcessRepository().Save(ctx, process))

	repo := p.SnapshotRepository()

	for version := 1; version <= 3; version++ {
		require.NoError(t, repo.Save(ctx, &models.Snapshot{
			ID:        uuid.NewString(),
			ProcessID: process.ID,
			Version:   version,
			Label:     models.SnapshotLabelRegeneration,
			Source:    models.SourceBuilder,
			Data:      process.Data,
		}))
	}

	snapshots, err := repo.ListByProcess(ctx, process.ID)
	require.NoError(t, err)
	require.Len(t, snapshots, 3)
	assert.Equal(t, 3, snapshots[0].Version)

	loaded, err := repo.GetByID(ctx, process.ID, snapshots[1].ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, process.Data, loaded.Data)

	removed, err := repo.Prune(ctx, process.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	require.NoError(t, p.ProcessRepository().Delete(ctx, process.ID))

	snapshots, err = repo.ListByProcess(ctx, process.ID)
	require.NoError(t, err)
	assert.Empty(t, snapshots)
}
