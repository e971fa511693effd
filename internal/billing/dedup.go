package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	dedupKeyPrefix = "billing:event:"
	// Stripe retries failed deliveries for up to three days; remembering IDs
	// a little longer than that covers the whole redelivery window.
	defaultDedupTTL = 96 * time.Hour
)

// RedisDeduper remembers processed event IDs in redis with a TTL. The check
// and the mark are separate operations: the service marks an event only after
// its transition is persisted, so a failed write leaves the ID unmarked and
// the redelivery is processed instead of skipped.
type RedisDeduper struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisDeduper returns a deduper over the given client. A non-positive ttl
// falls back to the default retention.
func NewRedisDeduper(client redis.UniversalClient, ttl time.Duration) *RedisDeduper {
	if ttl <= 0 {
		ttl = defaultDedupTTL
	}
	return &RedisDeduper{client: client, ttl: ttl}
}

// AlreadyProcessed reports whether the event ID has been marked. Read-only.
func (d *RedisDeduper) AlreadyProcessed(ctx context.Context, eventID string) (bool, error) {
	n, err := d.client.Exists(ctx, dedupKeyPrefix+eventID).Result()
	if err != nil {
		return false, fmt.Errorf("check event id: %w", err)
	}
	return n > 0, nil
}

// MarkProcessed records the event ID. Called after the transition is
// persisted; a crash between persisting and marking only costs one redundant
// idempotent replay.
func (d *RedisDeduper) MarkProcessed(ctx context.Context, eventID string) error {
	if err := d.client.Set(ctx, dedupKeyPrefix+eventID, "1", d.ttl).Err(); err != nil {
		return fmt.Errorf("mark event id: %w", err)
	}
	return nil
}
