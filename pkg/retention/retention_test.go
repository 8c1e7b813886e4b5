package retention_test

import (
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/dukex/swimlane/pkg/models"
	"github.com/dukex/swimlane/pkg/persistence/file"
	"github.com/dukex/swimlane/pkg/retention"
	"github.com/dukex/swimlane/pkg/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewJob_Validation(t *testing.T) {
	t.Parallel()

	p := file.NewPersistence(t.TempDir())

	tests := []struct {
		name     string
		schedule string
		keep     int
		wantErr  string
	}{
		{name: "default schedule", schedule: "", keep: 3},
		{name: "custom schedule", schedule: "*/5 * * * *", keep: 1},
		{name: "invalid schedule", schedule: "every day", keep: 3, wantErr: "invalid retention schedule"},
		{name: "keep zero", schedule: "", keep: 0, wantErr: "at least one snapshot"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			job, err := retention.NewJob(p, nil, discardLogger(), tt.schedule, tt.keep)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.NotNil(t, job)
		})
	}
}

func TestJob_RunOnce(t *testing.T) {
	t.Parallel()

	p := file.NewPersistence(t.TempDir())
	service := services.NewProcess(p, services.WithLogger(discardLogger()))

	created, err := service.Generate(t.Context(), services.GenerateRequest{Owner: "owner-1"})
	require.NoError(t, err)

	for i := range 4 {
		_, err := service.Generate(t.Context(), services.GenerateRequest{
			ProcessID: created.Process.ID,
			Owner:     "owner-1",
			Answers:   models.Answers{"process_name": fmt.Sprintf("Версия %d", i+2)},
		})
		require.NoError(t, err)
	}

	untouched, err := service.Generate(t.Context(), services.GenerateRequest{Owner: "owner-2"})
	require.NoError(t, err)

	job, err := retention.NewJob(p, nil, discardLogger(), "", 2)
	require.NoError(t, err)

	removed, err := job.RunOnce(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	snapshots, err := service.Snapshots(t.Context(), created.Process.ID)
	require.NoError(t, err)
	require.Len(t, snapshots, 2)
	assert.Equal(t, 4, snapshots[0].Version)
	assert.Equal(t, 3, snapshots[1].Version)

	snapshots, err = service.Snapshots(t.Context(), untouched.Process.ID)
	require.NoError(t, err)
	assert.Empty(t, snapshots)

	removed, err = job.RunOnce(t.Context())
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestJob_StartStop(t *testing.T) {
	t.Parallel()

	job, err := retention.NewJob(file.NewPersistence(t.TempDir()), nil, discardLogger(), "@every 1h", 3)
	require.NoError(t, err)

	require.NoError(t, job.Start(t.Context()))
	job.Stop(t.Context())
	job.Stop(t.Context())
}
