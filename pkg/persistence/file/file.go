// Package file provides file-based persistence for processes and their snapshots.
package file

import (
	"context"
	"os"
	"strings"

	"github.com/dukex/swimlane/pkg/persistence"
)

// Persistence implements the persistence.Persistence interface using the file system.
// Processes live under <root>/processes and snapshots under <root>/snapshots/<process id>.
type Persistence struct {
	root         string
	processRepo  *ProcessRepository
	snapshotRepo *SnapshotRepository
}

// NewPersistence creates a new instance of Persistence with the specified root directory.
func NewPersistence(root string) persistence.Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{
		root:         cleanRoot,
		processRepo:  NewProcessRepository(cleanRoot),
		snapshotRepo: NewSnapshotRepository(cleanRoot),
	}
}

// Close performs any necessary cleanup. For file-based persistence, there is nothing to clean up.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck checks if the file persistence layer is healthy by verifying the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// ProcessRepository returns the process repository implementation for file persistence.
func (fp *Persistence) ProcessRepository() persistence.ProcessRepository {
	return fp.processRepo
}

// SnapshotRepository returns the snapshot repository implementation for file persistence.
func (fp *Persistence) SnapshotRepository() persistence.SnapshotRepository {
	return fp.snapshotRepo
}
