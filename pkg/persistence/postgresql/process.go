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
	"github.com/dukex/swimlane/pkg/persistence"
	"github.com/google/uuid"
)

const processColumns = `
	id
  , owner
  , company_name
  , answers
  , source
  , version
  , data
  , score
  , created_at
  , updated_at
`

// ProcessRepository handles process-related database operations.
type ProcessRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewProcessRepository creates a new process repository.
func NewProcessRepository(db *sql.DB, logger *slog.Logger) *ProcessRepository {
	return &ProcessRepository{db: db, logger: logger}
}

// List returns a page of processes. Sort fields come from a fixed allowlist.
func (r *ProcessRepository) List(ctx context.Context, opts persistence.ListProcessesOptions) (*persistence.ProcessListResult, error) {
	opts, err := persistence.NormalizeListOptions(opts)
	if err != nil {
		return nil, err
	}

	var total int64

	err = r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM processes WHERE ($1::text = '' OR owner = $1::text)`,
		opts.OwnerID,
	).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("failed to count processes: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM processes
		WHERE ($1::text = '' OR owner = $1::text)
		ORDER BY %s %s, id ASC
		LIMIT $2 OFFSET $3
	`, processColumns, opts.SortBy, opts.SortOrder)

	rows, err := r.db.QueryContext(ctx, query, opts.OwnerID, opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query processes: %w", err)
	}

	defer closeRows(ctx, r.logger, rows)

	processes := make([]*models.Process, 0)

	for rows.Next() {
		process, err := scanProcess(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan process: %w", err)
		}

		processes = append(processes, process)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating processes: %w", err)
	}

	return &persistence.ProcessListResult{
		Processes:   processes,
		TotalCount:  total,
		HasNextPage: int64(opts.Offset+len(processes)) < total,
	}, nil
}

// GetByID returns a process by its ID or nil when it does not exist.
func (r *ProcessRepository) GetByID(ctx context.Context, id string) (*models.Process, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+processColumns+` FROM processes WHERE id = $1`, id)

	process, err := scanProcess(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to scan process: %w", err)
	}

	return process, nil
}

// Save upserts a process.
func (r *ProcessRepository) Save(ctx context.Context, process *models.Process) error {
	now := time.Now().UTC()

	if process.CreatedAt.IsZero() {
		process.CreatedAt = now
	}

	process.UpdatedAt = now

	if process.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate process ID: %w", err)
		}

		process.ID = id.String()
	}

	answersJSON, err := json.Marshal(process.Answers)
	if err != nil {
		return fmt.Errorf("failed to marshal answers: %w", err)
	}

	dataJSON, err := json.Marshal(process.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal process data: %w", err)
	}

	name := ""
	if process.Data != nil {
		name = process.Data.Name
	}

	query := `
		INSERT INTO processes (id, owner, company_name, name, answers, source, version, data, score, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			owner = EXCLUDED.owner,
			company_name = EXCLUDED.company_name,
			name = EXCLUDED.name,
			answers = EXCLUDED.answers,
			source = EXCLUDED.source,
			version = EXCLUDED.version,
			data = EXCLUDED.data,
			score = EXCLUDED.score,
			updated_at = EXCLUDED.updated_at
	`

	_, err = r.db.ExecContext(ctx, query,
		process.ID,
		process.Owner,
		process.CompanyName,
		name,
		answersJSON,
		process.Source,
		process.Version,
		dataJSON,
		process.Score,
		process.CreatedAt,
		process.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save process: %w", err)
	}

	return nil
}

// Delete removes a process; its snapshots are removed by cascade.
func (r *ProcessRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM processes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete process: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if affected == 0 {
		return persistence.NewProcessError("Delete", id, persistence.ErrProcessNotFound)
	}

	return nil
}

func scanProcess(row scanner) (*models.Process, error) {
	var (
		process     models.Process
		answersJSON []byte
		dataJSON    []byte
	)

	err := row.Scan(
		&process.ID,
		&process.Owner,
		&process.CompanyName,
		&answersJSON,
		&process.Source,
		&process.Version,
		&dataJSON,
		&process.Score,
		&process.CreatedAt,
		&process.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(answersJSON) > 0 {
		if err := json.Unmarshal(answersJSON, &process.Answers); err != nil {
			return nil, fmt.Errorf("failed to unmarshal answers: %w", err)
		}
	}

	if err := json.Unmarshal(dataJSON, &process.Data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal process data: %w", err)
	}

	return &process, nil
}
