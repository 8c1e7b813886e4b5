package mocks

import (
	"context"

	"github.com/dukex/swimlane/pkg/models"
	"github.com/dukex/swimlane/pkg/persistence"
	"github.com/stretchr/testify/mock"
)

// MockPersistence is a mock implementation of persistence.Persistence interface.
type MockPersistence struct {
	mock.Mock

	Processes *MockProcessRepository
	Snapshots *MockSnapshotRepository
}

// NewMockPersistence creates a persistence mock with empty repository mocks.
func NewMockPersistence() *MockPersistence {
	return &MockPersistence{
		Processes: &MockProcessRepository{},
		Snapshots: &MockSnapshotRepository{},
	}
}

func (m *MockPersistence) ProcessRepository() persistence.ProcessRepository {
	return m.Processes
}

func (m *MockPersistence) SnapshotRepository() persistence.SnapshotRepository {
	return m.Snapshots
}

func (m *MockPersistence) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

func (m *MockPersistence) Close(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

// MockProcessRepository is a mock implementation of persistence.ProcessRepository interface.
type MockProcessRepository struct {
	mock.Mock
}

func (m *MockProcessRepository) List(
	ctx context.Context,
	opts persistence.ListProcessesOptions,
) (*persistence.ProcessListResult, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*persistence.ProcessListResult), args.Error(1)
}

func (m *MockProcessRepository) GetByID(ctx context.Context, id string) (*models.Process, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Process), args.Error(1)
}

func (m *MockProcessRepository) Save(ctx context.Context, process *models.Process) error {
	args := m.Called(ctx, process)

	return args.Error(0)
}

func (m *MockProcessRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)

	return args.Error(0)
}

// MockSnapshotRepository is a mock implementation of persistence.SnapshotRepository interface.
type MockSnapshotRepository struct {
	mock.Mock
}

func (m *MockSnapshotRepository) Save(ctx context.Context, snapshot *models.Snapshot) error {
	args := m.Called(ctx, snapshot)

	return args.Error(0)
}

func (m *MockSnapshotRepository) ListByProcess(ctx context.Context, processID string) ([]*models.Snapshot, error) {
	args := m.Called(ctx, processID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.Snapshot), args.Error(1)
}

func (m *MockSnapshotRepository) GetByID(ctx context.Context, processID, snapshotID string) (*models.Snapshot, error) {
	args := m.Called(ctx, processID, snapshotID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Snapshot), args.Error(1)
}

func (m *MockSnapshotRepository) Prune(ctx context.Context, processID string, keep int) (int, error) {
	args := m.Called(ctx, processID, keep)

	return args.Int(0), args.Error(1)
}

func (m *MockSnapshotRepository) DeleteByProcess(ctx context.Context, processID string) error {
	args := m.Called(ctx, processID)

	return args.Error(0)
}
