// Package redis provides Redis-backed persistence for processes and their snapshots.
// Each process is a JSON string key, snapshots of a process share one hash.
package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/swimlane/pkg/persistence"
	goredis "github.com/redis/go-redis/v9"
)

const (
	keyPrefix    = "swimlane:"
	processIndex = keyPrefix + "processes"
	processKey   = keyPrefix + "process:"
	snapshotsKey = keyPrefix + "snapshots:"
	pingTimeout  = 5 * time.Second
)

// Persistence implements the persistence layer on top of a Redis client.
type Persistence struct {
	client       goredis.UniversalClient
	logger       *slog.Logger
	processRepo  *ProcessRepository
	snapshotRepo *SnapshotRepository
}

// NewPersistence connects to the Redis server described by a redis:// URL.
func NewPersistence(ctx context.Context, logger *slog.Logger, redisURL string) (*Persistence, error) {
	options, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := goredis.NewClient(options)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()

		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.InfoContext(ctx, "Connected to Redis", "addr", options.Addr, "db", options.DB)

	return NewPersistenceWithClient(client, logger), nil
}

// NewPersistenceWithClient wraps an existing client.
func NewPersistenceWithClient(client goredis.UniversalClient, logger *slog.Logger) *Persistence {
	return &Persistence{
		client:       client,
		logger:       logger,
		processRepo:  &ProcessRepository{client: client},
		snapshotRepo: &SnapshotRepository{client: client},
	}
}

// Close closes the Redis client.
func (p *Persistence) Close(_ context.Context) error {
	if err := p.client.Close(); err != nil {
		return fmt.Errorf("failed to close redis client: %w", err)
	}

	return nil
}

// HealthCheck pings the Redis server.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	if err := p.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}

	return nil
}

// ProcessRepository returns the process repository.
func (p *Persistence) ProcessRepository() persistence.ProcessRepository {
	return p.processRepo
}

// SnapshotRepository returns the snapshot repository.
func (p *Persistence) SnapshotRepository() persistence.SnapshotRepository {
	return p.snapshotRepo
}
