package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/samanthvittal/bookmark-browser/internal/store"
)

// Backend persists documents as plain Redis strings. Keys never expire.
type Backend struct {
	client *redis.Client
	now    func() time.Time
}

// NewBackend creates a new Redis backend
func NewBackend(client *redis.Client) *Backend {
	return &Backend{
		client: client,
		now:    time.Now,
	}
}

// Read retrieves a value by persistence key
func (b *Backend) Read(ctx context.Context, name string) ([]byte, error) {
	data, err := b.client.Get(ctx, Key(name)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get %s: %w", name, err)
	}
	return data, nil
}

// Write stores a value and records when it was written.
// Both commands go out in one MULTI/EXEC so readers never see a half update.
func (b *Backend) Write(ctx context.Context, name string, data []byte) error {
	pipe := b.client.TxPipeline()
	pipe.Set(ctx, Key(name), data, 0)
	pipe.HSet(ctx, UpdatedAtKey(), name, b.now().UTC().Format(time.RFC3339Nano))

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save %s: %w", name, err)
	}
	return nil
}

// UpdatedAt returns when name was last written, or the zero time if never.
func (b *Backend) UpdatedAt(ctx context.Context, name string) (time.Time, error) {
	raw, err := b.client.HGet(ctx, UpdatedAtKey(), name).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("failed to get timestamp for %s: %w", name, err)
	}
	ts, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp for %s: %w", name, err)
	}
	return ts, nil
}
