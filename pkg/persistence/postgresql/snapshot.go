package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/swimlane/pkg/models"
)

const snapshotColumns = `
	id
  , process_id
  , version
  , label
  , source
  , data
  , created_at
`

// SnapshotRepository handles snapshot-related database operations.
type SnapshotRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSnapshotRepository creates a new snapshot repository.
func NewSnapshotRepository(db *sql.DB, logger *slog.Logger) *SnapshotRepository {
	return &SnapshotRepository{db: db, logger: logger}
}

// Save inserts an immutable snapshot.
func (r *SnapshotRepository) Save(ctx context.Context, snapshot *models.Snapshot) error {
	if snapshot.CreatedAt.IsZero() {
		snapshot.CreatedAt = time.Now().UTC()
	}

	dataJSON, err := json.Marshal(snapshot.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot data: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO process_snapshots (id, process_id, version, label, source, data, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		snapshot.ID,
		snapshot.ProcessID,
		snapshot.Version,
		snapshot.Label,
		snapshot.Source,
		dataJSON,
		snapshot.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	return nil
}

// ListByProcess returns the snapshots of a process, newest version first.
func (r *SnapshotRepository) ListByProcess(ctx context.Context, processID string) ([]*models.Snapshot, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+snapshotColumns+`
		FROM process_snapshots
		WHERE process_id = $1
		ORDER BY version DESC, created_at DESC
	`, processID)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}

	defer closeRows(ctx, r.logger, rows)

	snapshots := make([]*models.Snapshot, 0)

	for rows.Next() {
		snapshot, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}

		snapshots = append(snapshots, snapshot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshots: %w", err)
	}

	return snapshots, nil
}

// GetByID returns a snapshot of a process or nil when it does not exist.
func (r *SnapshotRepository) GetByID(ctx context.Context, processID, snapshotID string) (*models.Snapshot, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+snapshotColumns+`
		FROM process_snapshots
		WHERE process_id = $1 AND id = $2
	`, processID, snapshotID)

	snapshot, err := scanSnapshot(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to scan snapshot: %w", err)
	}

	return snapshot, nil
}

// Prune keeps the newest keep snapshots of a process and returns how many were removed.
func (r *SnapshotRepository) Prune(ctx context.Context, processID string, keep int) (int, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM process_snapshots
		WHERE process_id = $1 AND id NOT IN (
			SELECT id FROM process_snapshots
			WHERE process_id = $1
			ORDER BY version DESC, created_at DESC
			LIMIT $2
		)
	`, processID, max(keep, 0))
	if err != nil {
		return 0, fmt.Errorf("failed to prune snapshots: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return int(affected), nil
}

// DeleteByProcess removes every snapshot of a process.
func (r *SnapshotRepository) DeleteByProcess(ctx context.Context, processID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM process_snapshots WHERE process_id = $1`, processID)
	if err != nil {
		return fmt.Errorf("failed to delete snapshots: %w", err)
	}

	return nil
}

func scanSnapshot(row scanner) (*models.Snapshot, error) {
	var (
		snapshot models.Snapshot
		dataJSON []byte
	)

	err := row.Scan(
		&snapshot.ID,
		&snapshot.ProcessID,
		&snapshot.Version,
		&snapshot.Label,
		&snapshot.Source,
		&dataJSON,
		&snapshot.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(dataJSON, &snapshot.Data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot data: %w", err)
	}

	return &snapshot, nil
}
