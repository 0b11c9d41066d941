package oura

import (
	"context"
	"net/http"
	"net/url"

	"github.com/stridelog/stridelog/internal/timeline"
	"github.com/stridelog/stridelog/internal/xslog"
)

type SleepService interface {
	// DailyScores returns the daily sleep summary scores for the window,
	// the primary score source.
	DailyScores(ctx context.Context, start, end timeline.DateKey) ([]timeline.ScoreEntry, error)

	// Sessions returns the raw sleep session fragments for the window.
	Sessions(ctx context.Context, start, end timeline.DateKey) ([]timeline.SleepSession, error)
}

type sleepService struct {
	client *Client
}

func (s *sleepService) DailyScores(ctx context.Context, start, end timeline.DateKey) ([]timeline.ScoreEntry, error) {
	const route = "/usercollection/daily_sleep"

	records, err := listAll[DailySleepRecord](ctx, s.client, route, start, end)
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
			s.client.logger.WarnContext(ctx, "skipping daily sleep record with bad day", xslog.Date(r.Day))
			continue
		}
		scores = append(scores, timeline.ScoreEntry{Date: date, Score: *r.Score})
	}
	return scores, nil
}

func (s *sleepService) Sessions(ctx context.Context, start, end timeline.DateKey) ([]timeline.SleepSession, error) {
	const route = "/usercollection/sleep"

	records, err := listAll[SleepSessionRecord](ctx, s.client, route, start, end)
	if err != nil {
		return nil, err
	}

	sessions := make([]timeline.SleepSession, 0, len(records))
	for _, r := range records {
		date, err := timeline.ParseDateKey(r.Day)
		if err != nil {
			s.client.logger.WarnContext(ctx, "skipping sleep session with bad day", xslog.Date(r.Day))
			continue
		}
		session := timeline.SleepSession{
			Date:         date,
			TotalSeconds: r.TotalSleepSeconds,
			RemSeconds:   r.RemSleepSeconds,
			DeepSeconds:  r.DeepSleepSeconds,
			LightSeconds: r.LightSleepSeconds,
		}
		if r.Score != nil {
			score := *r.Score
			session.Score = &score
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

// MaxPages bounds worst-case latency against an upstream that keeps
// returning a next token.
const MaxPages = 10

// listAll pages through one collection endpoint. The upstream attributes
// overnight sessions to the following calendar day, so the queried window
// ends one day after the nominal end; callers re-filter to the range they
// asked for.
func listAll[T any](ctx context.Context, c *Client, route string, start, end timeline.DateKey) ([]T, error) {
	query := url.Values{}
	query.Set("start_date", string(start))
	query.Set("end_date", string(end.Next()))

	var all []T
	for page := 1; page <= MaxPages; page++ {
		var resp PaginatedResponse[T]
		if err := c.do(ctx, http.MethodGet, route, query, &resp); err != nil {
			return nil, err
		}

		all = append(all, resp.Data...)

		if !resp.HasMore() {
			break
		}
		query.Set("next_token", *resp.NextToken)
	}
	return all, nil
}
