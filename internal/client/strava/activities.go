package strava

import (
	"context"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/stridelog/stridelog/internal/timeline"
	"github.com/stridelog/stridelog/internal/xslog"
)

const (
	activityTypeRun = "Run"

	// PageSize is the fixed listing page size; a page with fewer records
	// is the last one.
	PageSize = 200

	// MaxPages bounds worst-case latency against an upstream that keeps
	// returning full pages.
	MaxPages = 10

	metersPerMile = 1609.344
)

type ActivityService interface {
	List(ctx context.Context, params *ListParams) ([]Activity, error)
	Runs(ctx context.Context, start, end time.Time) ([]timeline.ActivityRecord, error)
}

type ListParams struct {
	Page    int
	PerPage int
	After   *time.Time
	Before  *time.Time
}

func (p *ListParams) values() url.Values {
	if p == nil {
		return nil
	}

	v := make(url.Values)

	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.PerPage > 0 {
		v.Set("per_page", strconv.Itoa(p.PerPage))
	}
	if p.After != nil {
		v.Set("after", strconv.FormatInt(p.After.Unix(), 10))
	}
	if p.Before != nil {
		v.Set("before", strconv.FormatInt(p.Before.Unix(), 10))
	}

	return v
}

type activityService struct {
	client *Client
}

func (s *activityService) List(ctx context.Context, params *ListParams) ([]Activity, error) {
	const route = "/athlete/activities"

	var activities []Activity
	if err := s.client.do(ctx, http.MethodGet, route, params.values(), &activities); err != nil {
		return nil, err
	}
	return activities, nil
}

// Runs fetches all pages in the window, keeps running activities only, and
// normalizes them. A failed page aborts the fetch and returns whatever has
// been accumulated; only credential failures propagate.
func (s *activityService) Runs(ctx context.Context, start, end time.Time) ([]timeline.ActivityRecord, error) {
	var runs []timeline.ActivityRecord

	for page := 1; page <= MaxPages; page++ {
		activities, err := s.List(ctx, &ListParams{
			Page:    page,
			PerPage: PageSize,
			After:   &start,
			Before:  &end,
		})
		if err != nil {
			if IsCredentialError(err) {
				return nil, err
			}
			s.client.logger.WarnContext(ctx, "activity page fetch failed, treating as last page",
				xslog.Count(page), xslog.Error(err))
			return runs, nil
		}

		for _, a := range activities {
			if a.Type != activityTypeRun && a.SportType != activityTypeRun {
				continue
			}
			record, err := normalize(a)
			if err != nil {
				s.client.logger.WarnContext(ctx, "skipping malformed activity", xslog.Error(err))
				continue
			}
			runs = append(runs, record)
		}

		if len(activities) < PageSize {
			break
		}
	}

	return runs, nil
}

// normalize derives the local calendar date from the local start
// timestamp's own components (never the UTC date of the instant), the pace
// in minutes per mile, and the total-steps cadence from the per-limb value.
func normalize(a Activity) (timeline.ActivityRecord, error) {
	startLocal, err := time.Parse(time.RFC3339, a.StartDateLocal)
	if err != nil {
		return timeline.ActivityRecord{}, &MalformedPayloadError{Path: "start_date_local", Cause: err}
	}

	record := timeline.ActivityRecord{
		Date:              timeline.NewDateKey(startLocal),
		Name:              a.Name,
		DistanceMeters:    a.DistanceMeters,
		MovingTimeSeconds: a.MovingTimeSeconds,
	}

	if a.DistanceMeters > 0 {
		pace := (float64(a.MovingTimeSeconds) / 60.0) / (a.DistanceMeters / metersPerMile)
		record.Pace = &pace
	}
	if a.AverageHeartrate > 0 {
		hr := int(math.Round(a.AverageHeartrate))
		record.AverageHeartrate = &hr
	}
	if a.MaxHeartrate > 0 {
		hr := int(math.Round(a.MaxHeartrate))
		record.MaxHeartrate = &hr
	}
	if a.AverageCadence > 0 {
		// upstream reports per-limb cadence
		cadence := int(math.Round(a.AverageCadence * 2))
		record.Cadence = &cadence
	}

	return record, nil
}
