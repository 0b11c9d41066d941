package xsync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/stridelog/stridelog/internal/rollup"
	"github.com/stridelog/stridelog/internal/storage"
	"github.com/stridelog/stridelog/internal/timeline"
	"github.com/stridelog/stridelog/internal/xerrors"
	"github.com/stridelog/stridelog/internal/xslog"
)

// fetchWindowYears is how far back a live fetch reaches regardless of the
// requested range. Caching the wide window means later range queries within
// it are served without touching the upstreams.
const fetchWindowYears = 2

type SyncService interface {
	// Days returns one gap-free row per day in [start, end], from the
	// session's cache when it is fresh and complete, live otherwise.
	Days(ctx context.Context, sessionID string, start, end timeline.DateKey) ([]rollup.DayRow, error)

	// Refresh drops the session's cached snapshot and repopulates it in
	// the background.
	Refresh(ctx context.Context, sessionID string) error
}

type Service struct {
	fetcher DataFetcher
	cache   storage.SessionCache
	ttl     time.Duration
	logger  *slog.Logger

	now func() time.Time
}

var _ SyncService = (*Service)(nil)

func NewService(fetcher DataFetcher, cache storage.SessionCache, ttl time.Duration, logger *slog.Logger) *Service {
	return &Service{
		fetcher: fetcher,
		cache:   cache,
		ttl:     ttl,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *Service) Days(ctx context.Context, sessionID string, start, end timeline.DateKey) ([]rollup.DayRow, error) {
	if snap, ok := s.loadFresh(ctx, sessionID); ok {
		s.logger.InfoContext(ctx, "serving days from cache",
			xslog.SessionID(sessionID), xslog.Start(start.Time()), xslog.End(end.Time()))
		m := timeline.Rebuild(start, end, snap.Data)
		return rollup.Rows(m, start, end), nil
	}

	wideStart, wideEnd := s.fetchWindow(start, end)
	src, err := s.fetcher.Fetch(ctx, wideStart, wideEnd)
	if err != nil {
		if appErr := xerrors.As(err); appErr != nil {
			return nil, err
		}
		return nil, xerrors.BadGateway(
			xerrors.WithMessage("failed to fetch sources"),
			xerrors.WithCause(err),
		)
	}

	m := timeline.Build(src)
	rows := rollup.Rows(m, start, end)

	// Populate off the request path; a failed write only costs the next
	// request a live fetch.
	snap := storage.Snapshot{Data: m.Flatten(), SyncedAt: s.now()}
	go s.populate(context.WithoutCancel(ctx), sessionID, snap)

	return rows, nil
}

func (s *Service) Refresh(ctx context.Context, sessionID string) error {
	if err := s.cache.Clear(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}

	go func(ctx context.Context) {
		wideStart, wideEnd := s.fetchWindow("", "")
		src, err := s.fetcher.Fetch(ctx, wideStart, wideEnd)
		if err != nil {
			s.logger.ErrorContext(ctx, "refresh fetch failed",
				xslog.SessionID(sessionID), xslog.Error(err))
			return
		}
		snap := storage.Snapshot{Data: timeline.Build(src).Flatten(), SyncedAt: s.now()}
		s.populate(ctx, sessionID, snap)
	}(context.WithoutCancel(ctx))

	return nil
}

// loadFresh returns the session's snapshot when the backend has all of it
// and it was synced within the TTL. Any other outcome, including a backend
// that is down, reads as a miss.
func (s *Service) loadFresh(ctx context.Context, sessionID string) (storage.Snapshot, bool) {
	snap, err := s.cache.Load(ctx, sessionID)
	if errors.Is(err, storage.ErrNotFound) {
		return storage.Snapshot{}, false
	}
	if err != nil {
		s.logger.WarnContext(ctx, "cache load failed, fetching live",
			xslog.SessionID(sessionID), xslog.Error(err))
		return storage.Snapshot{}, false
	}
	if s.now().Sub(snap.SyncedAt) >= s.ttl {
		return storage.Snapshot{}, false
	}
	return snap, true
}

// fetchWindow widens the requested range to the full fetch horizon: from
// fetchWindowYears ago through today, stretched further if the request
// itself reaches outside that.
func (s *Service) fetchWindow(start, end timeline.DateKey) (timeline.DateKey, timeline.DateKey) {
	now := s.now()
	wideStart := timeline.NewDateKey(now.AddDate(-fetchWindowYears, 0, 0))
	wideEnd := timeline.NewDateKey(now)

	if start != "" && start.Before(wideStart) {
		wideStart = start
	}
	if end != "" && wideEnd.Before(end) {
		wideEnd = end
	}
	return wideStart, wideEnd
}

func (s *Service) populate(ctx context.Context, sessionID string, snap storage.Snapshot) {
	if err := s.cache.Store(ctx, sessionID, snap, s.ttl); err != nil {
		s.logger.WarnContext(ctx, "cache store failed",
			xslog.SessionID(sessionID), xslog.Error(err))
		return
	}
	s.logger.InfoContext(ctx, "cache populated", xslog.SessionID(sessionID))
}
