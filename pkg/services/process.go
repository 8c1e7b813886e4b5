package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dukex/swimlane/pkg/builder"
	"github.com/dukex/swimlane/pkg/eventbus"
	"github.com/dukex/swimlane/pkg/events"
	"github.com/dukex/swimlane/pkg/intake"
	"github.com/dukex/swimlane/pkg/models"
	"github.com/dukex/swimlane/pkg/otelhelper"
	"github.com/dukex/swimlane/pkg/passport"
	"github.com/dukex/swimlane/pkg/persistence"
	"github.com/dukex/swimlane/pkg/quality"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Process manages stored process graphs: generation, import of external graphs,
// quality reports, passports and snapshot history.
type Process struct {
	persistence persistence.Persistence
	publisher   eventbus.EventPublisher
	validator   *quality.Validator
	gate        *intake.Gate
	tracer      trace.Tracer
	logger      *slog.Logger
}

// Option customizes a Process service.
type Option func(*Process)

// WithEventPublisher sets where lifecycle events are published.
func WithEventPublisher(publisher eventbus.EventPublisher) Option {
	return func(p *Process) {
		p.publisher = publisher
	}
}

// WithValidator replaces the default quality validator.
func WithValidator(validator *quality.Validator) Option {
	return func(p *Process) {
		p.validator = validator
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(p *Process) {
		p.tracer = tracer
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Process) {
		p.logger = logger
	}
}

// NewProcess creates a new process service.
func NewProcess(persistence persistence.Persistence, opts ...Option) *Process {
	service := &Process{
		persistence: persistence,
		publisher:   eventbus.Noop{},
		validator:   quality.New(quality.DefaultThresholds()),
		tracer:      otelhelper.NoopTracer(),
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(service)
	}

	service.gate = intake.NewGate(service.validator)
	service.logger = service.logger.With("module", "process_service")

	return service
}

// HealthCheck checks the health of the persistence layer.
func (s *Process) HealthCheck(ctx context.Context) (string, bool) {
	if s.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := s.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// Build runs the deterministic builder without storing anything.
func (s *Process) Build(answers models.Answers, companyName string) *models.ProcessData {
	return builder.Build(answers, companyName)
}

// Validate scores a graph without storing anything.
func (s *Process) Validate(data *models.ProcessData) (*models.QualityCheckResult, error) {
	result, err := s.validator.Validate(data)
	if err != nil {
		return nil, NewValidationError("Validate", "invalid_process", err.Error(), err)
	}

	return result, nil
}

// Project derives the passport of a graph without storing anything.
func (s *Process) Project(data *models.ProcessData) *models.ProcessPassport {
	return passport.Project(data)
}

// GenerateRequest asks for a new builder-generated version of a process.
// Without ProcessID a new process is created.
type GenerateRequest struct {
	ProcessID   string         `json:"process_id,omitempty"`
	Owner       string         `json:"owner"`
	CompanyName string         `json:"company_name"`
	Answers     models.Answers `json:"answers"`
}

// ProcessResponse is returned by the mutating operations.
type ProcessResponse struct {
	Process *models.Process            `json:"process"`
	Quality *models.QualityCheckResult `json:"quality"`
}

// Generate builds a graph from the answers and stores it as the current version.
// The replaced version is kept as a regeneration snapshot.
func (s *Process) Generate(ctx context.Context, req GenerateRequest) (*ProcessResponse, error) {
	ctx, span := otelhelper.StartSpan(ctx, s.tracer, "process.generate",
		attribute.String(otelhelper.OwnerIDKey, req.Owner),
		attribute.String(otelhelper.ProcessIDKey, req.ProcessID),
	)
	defer span.End()

	current, err := s.loadForReplace(ctx, "Generate", req.ProcessID, req.Owner)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	answers := req.Answers
	companyName := strings.TrimSpace(req.CompanyName)

	if current != nil {
		if answers == nil {
			answers = current.Answers
		}

		if companyName == "" {
			companyName = current.CompanyName
		}
	}

	data := builder.Build(answers, companyName)

	result, err := s.validator.Validate(data)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("failed to validate generated process: %w", err)
	}

	process, err := s.store(ctx, current, &models.Process{
		ID:          req.ProcessID,
		Owner:       req.Owner,
		CompanyName: companyName,
		Answers:     answers,
		Source:      models.SourceBuilder,
		Data:        data,
		Score:       result.Score,
	}, models.SnapshotLabelRegeneration)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	span.SetAttributes(
		attribute.String(otelhelper.ProcessIDKey, process.ID),
		attribute.Int(otelhelper.VersionKey, process.Version),
		attribute.Int(otelhelper.ScoreKey, result.Score),
	)

	s.publish(ctx, process.ID, events.ProcessGenerated{
		BaseEvent:   events.NewBaseEvent(events.ProcessGeneratedEvent, process.ID, process.Owner),
		Version:     process.Version,
		Source:      process.Source,
		Score:       process.Score,
		Regenerated: current != nil,
	})

	return &ProcessResponse{Process: process, Quality: result}, nil
}

// ImportRequest submits a graph produced by the external generation service.
type ImportRequest struct {
	ProcessID   string         `json:"process_id,omitempty"`
	Owner       string         `json:"owner"`
	CompanyName string         `json:"company_name"`
	Answers     models.Answers `json:"answers,omitempty"`
	Raw         []byte         `json:"-"`
	Label       string         `json:"label,omitempty"`
}

// Import admits an external graph through the intake gate and stores it as the current
// version. Rejected graphs are not stored; the returned error carries the quality report.
func (s *Process) Import(ctx context.Context, req ImportRequest) (*ProcessResponse, error) {
	ctx, span := otelhelper.StartSpan(ctx, s.tracer, "process.import",
		attribute.String(otelhelper.OwnerIDKey, req.Owner),
		attribute.String(otelhelper.ProcessIDKey, req.ProcessID),
	)
	defer span.End()

	if len(strings.TrimSpace(string(req.Raw))) == 0 {
		return nil, NewValidationError("Import", "empty_payload", "raw graph is required", ErrEmptyPayload)
	}

	current, err := s.loadForReplace(ctx, "Import", req.ProcessID, req.Owner)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	data, result, err := s.gate.Admit(req.Raw)
	if err != nil {
		otelhelper.SetError(span, err)

		var rejection *intake.RejectionError
		if errors.As(err, &rejection) {
			s.publish(ctx, req.ProcessID, events.ProcessRejected{
				BaseEvent:    events.NewBaseEvent(events.ProcessRejectedEvent, req.ProcessID, req.Owner),
				Score:        rejection.Result.Score,
				FailedChecks: failedCheckIDs(rejection.Result),
			})
		}

		return nil, err
	}

	label := req.Label
	if label == "" {
		label = models.SnapshotLabelChangeRequest
	}

	answers := req.Answers
	companyName := strings.TrimSpace(req.CompanyName)

	if current != nil {
		if answers == nil {
			answers = current.Answers
		}

		if companyName == "" {
			companyName = current.CompanyName
		}
	}

	process, err := s.store(ctx, current, &models.Process{
		ID:          req.ProcessID,
		Owner:       req.Owner,
		CompanyName: companyName,
		Answers:     answers,
		Source:      models.SourceExternal,
		Data:        data,
		Score:       result.Score,
	}, label)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	span.SetAttributes(
		attribute.String(otelhelper.ProcessIDKey, process.ID),
		attribute.Int(otelhelper.VersionKey, process.Version),
		attribute.Int(otelhelper.ScoreKey, result.Score),
	)

	s.publish(ctx, process.ID, events.ProcessImported{
		BaseEvent: events.NewBaseEvent(events.ProcessImportedEvent, process.ID, process.Owner),
		Version:   process.Version,
		Score:     process.Score,
		Label:     label,
	})

	return &ProcessResponse{Process: process, Quality: result}, nil
}

// FetchByID returns the stored process.
func (s *Process) FetchByID(ctx context.Context, id string) (*models.Process, error) {
	process, err := s.persistence.ProcessRepository().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch process: %w", err)
	}

	if process == nil {
		return nil, persistence.NewProcessError("FetchByID", id, ErrProcessNotFound)
	}

	return process, nil
}

// ListProcessesRequest contains options for listing processes.
type ListProcessesRequest struct {
	Limit     int
	Offset    int
	OwnerID   string
	SortBy    string
	SortOrder string
}

// ListProcessesResponse contains the result of listing processes.
type ListProcessesResponse struct {
	Processes   []*models.Process `json:"processes"`
	TotalCount  int64             `json:"total_count"`
	HasNextPage bool              `json:"has_next_page"`
}

// List retrieves processes with filtering, sorting, and pagination.
func (s *Process) List(ctx context.Context, req ListProcessesRequest) (*ListProcessesResponse, error) {
	result, err := s.persistence.ProcessRepository().List(ctx, persistence.ListProcessesOptions{
		Limit:     req.Limit,
		Offset:    req.Offset,
		OwnerID:   req.OwnerID,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		switch {
		case errors.Is(err, persistence.ErrInvalidSortField):
			return nil, ErrInvalidSortField
		case errors.Is(err, persistence.ErrInvalidSortOrder):
			return nil, ErrInvalidSortOrder
		}

		return nil, fmt.Errorf("failed to list processes: %w", err)
	}

	return &ListProcessesResponse{
		Processes:   result.Processes,
		TotalCount:  result.TotalCount,
		HasNextPage: result.HasNextPage,
	}, nil
}

// Delete removes a process and its snapshot history.
func (s *Process) Delete(ctx context.Context, id string) error {
	process, err := s.FetchByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.persistence.ProcessRepository().Delete(ctx, id); err != nil {
		return err
	}

	if err := s.persistence.SnapshotRepository().DeleteByProcess(ctx, id); err != nil {
		return fmt.Errorf("failed to delete snapshots: %w", err)
	}

	s.publish(ctx, id, events.ProcessDeleted{
		BaseEvent: events.NewBaseEvent(events.ProcessDeletedEvent, id, process.Owner),
	})

	return nil
}

// Quality re-runs the validator on the current version.
func (s *Process) Quality(ctx context.Context, id string) (*models.QualityCheckResult, error) {
	ctx, span := otelhelper.StartSpan(ctx, s.tracer, "process.quality",
		attribute.String(otelhelper.ProcessIDKey, id),
	)
	defer span.End()

	process, err := s.FetchByID(ctx, id)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	result, err := s.validator.Validate(process.Data)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("stored process %s is invalid: %w", id, err)
	}

	span.SetAttributes(
		attribute.Int(otelhelper.ScoreKey, result.Score),
		attribute.Int(otelhelper.FailedErrorKey, len(result.Failed(models.SeverityError))),
	)

	return result, nil
}

// Passport projects the current version.
func (s *Process) Passport(ctx context.Context, id string) (*models.ProcessPassport, error) {
	process, err := s.FetchByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return passport.Project(process.Data), nil
}

// Snapshots lists the history of a process, newest first.
func (s *Process) Snapshots(ctx context.Context, id string) ([]*models.Snapshot, error) {
	if _, err := s.FetchByID(ctx, id); err != nil {
		return nil, err
	}

	snapshots, err := s.persistence.SnapshotRepository().ListByProcess(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	return snapshots, nil
}

// Rollback makes a snapshot the current version. The replaced version is kept as a
// rollback snapshot, so a rollback can itself be undone.
func (s *Process) Rollback(ctx context.Context, id, snapshotID string) (*ProcessResponse, error) {
	ctx, span := otelhelper.StartSpan(ctx, s.tracer, "process.rollback",
		attribute.String(otelhelper.ProcessIDKey, id),
		attribute.String(otelhelper.SnapshotIDKey, snapshotID),
	)
	defer span.End()

	current, err := s.FetchByID(ctx, id)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	snapshot, err := s.persistence.SnapshotRepository().GetByID(ctx, id, snapshotID)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("failed to fetch snapshot: %w", err)
	}

	if snapshot == nil {
		err := persistence.NewSnapshotError("Rollback", id, snapshotID, ErrSnapshotNotFound)
		otelhelper.SetError(span, err)

		return nil, err
	}

	result, err := s.validator.Validate(snapshot.Data)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("snapshot %s is invalid: %w", snapshotID, err)
	}

	fromVersion := current.Version

	process, err := s.store(ctx, current, &models.Process{
		ID:          current.ID,
		Owner:       current.Owner,
		CompanyName: current.CompanyName,
		Answers:     current.Answers,
		Source:      snapshot.Source,
		Data:        snapshot.Data,
		Score:       result.Score,
	}, models.SnapshotLabelRollback)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	s.publish(ctx, process.ID, events.ProcessRolledBack{
		BaseEvent:   events.NewBaseEvent(events.ProcessRolledBackEvent, process.ID, process.Owner),
		SnapshotID:  snapshotID,
		FromVersion: fromVersion,
		ToVersion:   process.Version,
	})

	return &ProcessResponse{Process: process, Quality: result}, nil
}

// loadForReplace checks ownership of an existing process. It returns nil when a new
// process should be created.
func (s *Process) loadForReplace(ctx context.Context, op, processID, owner string) (*models.Process, error) {
	if strings.TrimSpace(owner) == "" {
		return nil, NewValidationError(op, "empty_owner", "owner is required", ErrEmptyOwnerID)
	}

	if processID == "" {
		return nil, nil
	}

	current, err := s.FetchByID(ctx, processID)
	if err != nil {
		return nil, err
	}

	if current.Owner != owner {
		return nil, &ServiceError{Op: op, Code: "owner_mismatch", Err: ErrOwnerMismatch}
	}

	return current, nil
}

// store saves next as the new current version. When current exists it is first
// kept as a snapshot with the given label.
func (s *Process) store(ctx context.Context, current, next *models.Process, label string) (*models.Process, error) {
	next.Version = 1

	if current != nil {
		snapshotID, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("failed to generate snapshot ID: %w", err)
		}

		err = s.persistence.SnapshotRepository().Save(ctx, &models.Snapshot{
			ID:        snapshotID.String(),
			ProcessID: current.ID,
			Version:   current.Version,
			Label:     label,
			Source:    current.Source,
			Data:      current.Data,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to save snapshot: %w", err)
		}

		next.ID = current.ID
		next.Version = current.Version + 1
		next.CreatedAt = current.CreatedAt
	}

	if next.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("failed to generate process ID: %w", err)
		}

		next.ID = id.String()
	}

	if err := s.persistence.ProcessRepository().Save(ctx, next); err != nil {
		return nil, fmt.Errorf("failed to save process: %w", err)
	}

	s.logger.InfoContext(ctx, "Stored process version",
		"process_id", next.ID,
		"version", next.Version,
		"source", next.Source,
		"score", next.Score)

	return next, nil
}

func (s *Process) publish(ctx context.Context, key string, event eventbus.Event) {
	if err := s.publisher.Publish(ctx, key, event); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish event", "event_type", event.GetType(), "error", err)
	}
}

func failedCheckIDs(result *models.QualityCheckResult) []string {
	failed := result.Failed(models.SeverityError)

	ids := make([]string, 0, len(failed))
	for _, item := range failed {
		ids = append(ids, item.ID)
	}

	return ids
}
