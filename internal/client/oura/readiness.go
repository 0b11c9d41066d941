package oura

import (
	"context"

	"github.com/stridelog/stridelog/internal/timeline"
	"github.com/stridelog/stridelog/internal/xslog"
)

type ReadinessService interface {
	DailyScores(ctx context.Context, start, end timeline.DateKey) ([]timeline.ScoreEntry, error)
}

type readinessService struct {
	client *Client
}

func (s *readinessService) DailyScores(ctx context.Context, start, end timeline.DateKey) ([]timeline.ScoreEntry, error) {
	const route = "/usercollection/daily_readiness"

	records, err := listAll[DailyReadinessRecord](ctx, s.client, route, start, end)
	if err != nil {
		return nil, err
	}

	scores := make([]timeline.ScoreEntry, 0, len(records))
	for _, r := range records {
		if r.Score == nil {
			continue
		}
		date, err := timeline.ParseDateKey(r.Day)
		if err != nil {
			s.client.logger.WarnContext(ctx, "skipping readiness record with bad day", xslog.Date(r.Day))
			continue
		}
		scores = append(scores, timeline.ScoreEntry{Date: date, Score: *r.Score})
	}
	return scores, nil
}
