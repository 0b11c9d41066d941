package xsync

import (
	"context"
	"log/slog"

	"github.com/stridelog/stridelog/internal/client/oura"
	"github.com/stridelog/stridelog/internal/client/strava"
	"github.com/stridelog/stridelog/internal/timeline"
	"github.com/stridelog/stridelog/internal/xerrors"
	"github.com/stridelog/stridelog/internal/xslog"
	"golang.org/x/sync/errgroup"
)

// DataFetcher pulls every source for a date window in one shot.
type DataFetcher interface {
	Fetch(ctx context.Context, start, end timeline.DateKey) (timeline.Sources, error)
}

// Fetcher fans out to both upstreams in parallel. A source that is down or
// returns garbage contributes an empty slice; partial data always beats
// failure. Rejected credentials are the one unrecoverable case and abort
// the whole fetch.
type Fetcher struct {
	strava *strava.Client
	oura   *oura.Client
	logger *slog.Logger
}

var _ DataFetcher = (*Fetcher)(nil)

func NewFetcher(stravaClient *strava.Client, ouraClient *oura.Client, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		strava: stravaClient,
		oura:   ouraClient,
		logger: logger,
	}
}

func (f *Fetcher) Fetch(ctx context.Context, start, end timeline.DateKey) (timeline.Sources, error) {
	var src timeline.Sources

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		runs, err := f.strava.Activity.Runs(gctx, start.Time(), end.Next().Time())
		if err != nil {
			return f.absorb(gctx, "activities", err)
		}
		src.Runs = runs
		return nil
	})

	g.Go(func() error {
		scores, err := f.oura.Sleep.DailyScores(gctx, start, end)
		if err != nil {
			return f.absorb(gctx, "sleep scores", err)
		}
		src.SleepScores = clampScores(scores, start, end)
		return nil
	})

	g.Go(func() error {
		sessions, err := f.oura.Sleep.Sessions(gctx, start, end)
		if err != nil {
			return f.absorb(gctx, "sleep sessions", err)
		}
		// the client queries one day past the window; drop the overhang
		kept := sessions[:0]
		for _, s := range sessions {
			if s.Date.Before(start) || end.Before(s.Date) {
				continue
			}
			kept = append(kept, s)
		}
		src.SleepSessions = kept
		return nil
	})

	g.Go(func() error {
		scores, err := f.oura.Readiness.DailyScores(gctx, start, end)
		if err != nil {
			return f.absorb(gctx, "readiness", err)
		}
		src.Readiness = clampScores(scores, start, end)
		return nil
	})

	if err := g.Wait(); err != nil {
		return timeline.Sources{}, err
	}
	return src, nil
}

// absorb downgrades transient upstream failures to a logged warning so the
// merge proceeds with whatever the other sources returned. Credential
// failures propagate; retrying them cannot help.
func (f *Fetcher) absorb(ctx context.Context, source string, err error) error {
	if strava.IsCredentialError(err) || oura.IsCredentialError(err) {
		return xerrors.Unauthorized(
			xerrors.WithMessage("source credentials rejected"),
			xerrors.WithCause(err),
		)
	}
	f.logger.WarnContext(ctx, "source fetch failed, continuing without it",
		xslog.Source(source), xslog.Error(err))
	return nil
}

func clampScores(scores []timeline.ScoreEntry, start, end timeline.DateKey) []timeline.ScoreEntry {
	kept := scores[:0]
	for _, s := range scores {
		if s.Date.Before(start) || end.Before(s.Date) {
			continue
		}
		kept = append(kept, s)
	}
	return kept
}
