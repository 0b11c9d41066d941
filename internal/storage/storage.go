package storage

import (
	"context"
	"errors"
	"time"

	"github.com/stridelog/stridelog/internal/timeline"
)

var ErrNotFound = errors.New("cache entry not found")

// Snapshot is one session's cached timeline: the three per-category record
// arrays plus the shared sync timestamp. All four parts are written and
// read together; a snapshot missing any part does not exist.
type Snapshot struct {
	Data     timeline.Flattened
	SyncedAt time.Time
}

// SessionCache persists flattened timelines keyed by session.
type SessionCache interface {
	// Load returns the cached snapshot for a session. A missing or
	// partially-missing snapshot returns ErrNotFound.
	Load(ctx context.Context, sessionID string) (Snapshot, error)

	// Store writes all categories and the shared sync timestamp,
	// replacing any previous snapshot for the session.
	Store(ctx context.Context, sessionID string, snap Snapshot, ttl time.Duration) error

	// Clear removes the session's snapshot. Clearing an absent session
	// is not an error.
	Clear(ctx context.Context, sessionID string) error
}

// Pinger is implemented by backends whose reachability can be probed for
// health reporting.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NoopSessionCache stands in when no cache backend is configured or the
// configured one is unreachable: every read misses and writes are
// discarded, so the service always fetches live.
type NoopSessionCache struct{}

var _ SessionCache = NoopSessionCache{}

func (NoopSessionCache) Load(context.Context, string) (Snapshot, error) {
	return Snapshot{}, ErrNotFound
}

func (NoopSessionCache) Store(context.Context, string, Snapshot, time.Duration) error {
	return nil
}

func (NoopSessionCache) Clear(context.Context, string) error {
	return nil
}
