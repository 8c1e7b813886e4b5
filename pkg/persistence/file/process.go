package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dukex/swimlane/pkg/models"
	"github.com/dukex/swimlane/pkg/persistence"
)

// ProcessRepository handles process-related file operations.
type ProcessRepository struct {
	root string
	mu   sync.RWMutex
}

// NewProcessRepository creates a new process repository.
func NewProcessRepository(root string) *ProcessRepository {
	return &ProcessRepository{root: root}
}

func (pr *ProcessRepository) dir() string {
	return path.Join(pr.root, "processes")
}

// List returns paginated and filtered processes with in-memory operations.
func (pr *ProcessRepository) List(_ context.Context, opts persistence.ListProcessesOptions) (*persistence.ProcessListResult, error) {
	opts, err := persistence.NormalizeListOptions(opts)
	if err != nil {
		return nil, err
	}

	pr.mu.RLock()
	defer pr.mu.RUnlock()

	jsonFiles, err := fs.Glob(os.DirFS(pr.dir()), "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list process files: %w", err)
	}

	all := make([]*models.Process, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		processID := strings.TrimSuffix(file, ".json")

		process, err := pr.read(processID)
		if err != nil {
			return nil, fmt.Errorf("failed to load process %s: %w", processID, err)
		}

		if process != nil {
			all = append(all, process)
		}
	}

	return persistence.FilterAndPage(all, opts), nil
}

// GetByID retrieves a process by its ID from the file system.
func (pr *ProcessRepository) GetByID(_ context.Context, processID string) (*models.Process, error) {
	pr.mu.RLock()
	defer pr.mu.RUnlock()

	return pr.read(processID)
}

func (pr *ProcessRepository) read(processID string) (*models.Process, error) {
	filePath := filepath.Clean(path.Join(pr.dir(), processID+".json"))

	body, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to fetch process %s: %w", processID, err)
	}

	var process models.Process

	err = json.Unmarshal(body, &process)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal process %s: %w", processID, err)
	}

	return &process, nil
}

// Save saves a process to the file system.
func (pr *ProcessRepository) Save(_ context.Context, process *models.Process) error {
	pr.mu.Lock()
	defer pr.mu.Unlock()

	err := os.MkdirAll(pr.dir(), 0750)
	if err != nil {
		return fmt.Errorf("failed to create processes directory: %w", err)
	}

	now := time.Now().UTC()
	if process.CreatedAt.IsZero() {
		process.CreatedAt = now
	}

	process.UpdatedAt = now

	data, err := json.MarshalIndent(process, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal process %s: %w", process.ID, err)
	}

	return os.WriteFile(path.Join(pr.dir(), process.ID+".json"), data, 0600)
}

// Delete removes a process by its ID.
func (pr *ProcessRepository) Delete(_ context.Context, processID string) error {
	pr.mu.Lock()
	defer pr.mu.Unlock()

	err := os.Remove(path.Join(pr.dir(), processID+".json"))
	if err != nil && os.IsNotExist(err) {
		return persistence.NewProcessError("Delete", processID, persistence.ErrProcessNotFound)
	}

	if err != nil {
		return fmt.Errorf("failed to delete process %s: %w", processID, err)
	}

	return nil
}
