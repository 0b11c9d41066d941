package storage

import (
	"context"
	"fmt"
	"time"

	go_json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/stridelog/stridelog/internal/timeline"
)

var _ SessionCache = (*RedisSessionCache)(nil)

const (
	categoryActivities = "activities"
	categorySleep      = "sleep"
	categoryReadiness  = "readiness"
	categorySyncedAt   = "synced_at"
)

type RedisConfig struct {
	Client *redis.Client
}

type RedisSessionCache struct {
	client *redis.Client
}

func NewRedisSessionCache(cfg RedisConfig) *RedisSessionCache {
	return &RedisSessionCache{client: cfg.Client}
}

func (c *RedisSessionCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func cacheKey(sessionID, category string) string {
	return "cache:" + sessionID + ":" + category
}

func (c *RedisSessionCache) Load(ctx context.Context, sessionID string) (Snapshot, error) {
	values, err := c.client.MGet(ctx,
		cacheKey(sessionID, categoryActivities),
		cacheKey(sessionID, categorySleep),
		cacheKey(sessionID, categoryReadiness),
		cacheKey(sessionID, categorySyncedAt),
	).Result()
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to load snapshot: %w", err)
	}

	// A snapshot is all-or-nothing: any expired or missing key voids it.
	parts := make([]string, len(values))
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			return Snapshot{}, ErrNotFound
		}
		parts[i] = s
	}

	var snap Snapshot
	if err := go_json.Unmarshal([]byte(parts[0]), &snap.Data.Runs); err != nil {
		return Snapshot{}, fmt.Errorf("failed to unmarshal cached activities: %w", err)
	}
	if err := go_json.Unmarshal([]byte(parts[1]), &snap.Data.Sleeps); err != nil {
		return Snapshot{}, fmt.Errorf("failed to unmarshal cached sleep: %w", err)
	}
	if err := go_json.Unmarshal([]byte(parts[2]), &snap.Data.Readiness); err != nil {
		return Snapshot{}, fmt.Errorf("failed to unmarshal cached readiness: %w", err)
	}

	syncedAt, err := time.Parse(time.RFC3339, parts[3])
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to parse sync timestamp: %w", err)
	}
	snap.SyncedAt = syncedAt

	return snap, nil
}

func (c *RedisSessionCache) Store(ctx context.Context, sessionID string, snap Snapshot, ttl time.Duration) error {
	activities, err := marshalCategory(snap.Data.Runs)
	if err != nil {
		return fmt.Errorf("failed to marshal activities: %w", err)
	}
	sleeps, err := marshalCategory(snap.Data.Sleeps)
	if err != nil {
		return fmt.Errorf("failed to marshal sleep: %w", err)
	}
	readiness, err := marshalCategory(snap.Data.Readiness)
	if err != nil {
		return fmt.Errorf("failed to marshal readiness: %w", err)
	}

	pipe := c.client.TxPipeline()
	pipe.Set(ctx, cacheKey(sessionID, categoryActivities), activities, ttl)
	pipe.Set(ctx, cacheKey(sessionID, categorySleep), sleeps, ttl)
	pipe.Set(ctx, cacheKey(sessionID, categoryReadiness), readiness, ttl)
	pipe.Set(ctx, cacheKey(sessionID, categorySyncedAt), snap.SyncedAt.Format(time.RFC3339), ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store snapshot: %w", err)
	}
	return nil
}

func (c *RedisSessionCache) Clear(ctx context.Context, sessionID string) error {
	if err := c.client.Del(ctx,
		cacheKey(sessionID, categoryActivities),
		cacheKey(sessionID, categorySleep),
		cacheKey(sessionID, categoryReadiness),
		cacheKey(sessionID, categorySyncedAt),
	).Err(); err != nil {
		return fmt.Errorf("failed to clear snapshot: %w", err)
	}
	return nil
}

// marshalCategory keeps nil slices indistinguishable from empty ones on the
// wire, so a session with no runs still round-trips as a present category.
func marshalCategory[T timeline.ActivityRecord | timeline.SleepDay | timeline.ReadinessDay](records []T) ([]byte, error) {
	if records == nil {
		records = []T{}
	}
	return go_json.Marshal(records)
}
