package dispatch

import (
	"context"
	"fmt"
	"time"

	"avviso/internal/platform/redis"
	"avviso/pkg/domain"
)

// Deduper remembers which messages have already been fully processed so a
// redelivered record is skipped instead of re-dispatched. Errors are
// transient: the caller retries rather than guessing.
type Deduper interface {
	AlreadyProcessed(ctx context.Context, id domain.MessageID) (bool, error)
	MarkProcessed(ctx context.Context, id domain.MessageID) error
}

const dedupKeyPrefix = "avviso:dispatch:processed:"

// RedisDeduper tracks processed message IDs as TTL'd redis keys. The TTL
// bounds memory; a record redelivered after expiry is reprocessed, which the
// idempotent stores absorb.
type RedisDeduper struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisDeduper(client *redis.Client, ttl time.Duration) *RedisDeduper {
	return &RedisDeduper{client: client, ttl: ttl}
}

func (d *RedisDeduper) AlreadyProcessed(ctx context.Context, id domain.MessageID) (bool, error) {
	n, err := d.client.Exists(ctx, dedupKeyPrefix+id.String()).Result()
	if err != nil {
		return false, fmt.Errorf("check dedup key for %s: %w", id, err)
	}
	return n > 0, nil
}

// MarkProcessed is first-writer-wins: SETNX keeps a competing consumer from
// refreshing the TTL of a mark that already exists.
func (d *RedisDeduper) MarkProcessed(ctx context.Context, id domain.MessageID) error {
	if err := d.client.SetNX(ctx, dedupKeyPrefix+id.String(), "1", d.ttl).Err(); err != nil {
		return fmt.Errorf("set dedup key for %s: %w", id, err)
	}
	return nil
}
