package timeline

import (
	"fmt"
	"time"
)

// DateLayout is the canonical calendar-day form used to join all sources.
const DateLayout = "2006-01-02"

// DateKey is a YYYY-MM-DD calendar date. It is derived from each source's
// own local-time representation, never from the UTC components of an
// instant, so activities near midnight land on the correct day.
type DateKey string

func NewDateKey(t time.Time) DateKey {
	return DateKey(t.Format(DateLayout))
}

func ParseDateKey(s string) (DateKey, error) {
	if _, err := time.Parse(DateLayout, s); err != nil {
		return "", fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateKey(s), nil
}

func (d DateKey) Time() time.Time {
	t, _ := time.Parse(DateLayout, string(d))
	return t
}

func (d DateKey) Next() DateKey {
	return NewDateKey(d.Time().AddDate(0, 0, 1))
}

// Before relies on the fixed-width layout sorting lexicographically.
func (d DateKey) Before(other DateKey) bool {
	return d < other
}

// Days returns every DateKey from start through end inclusive.
// Returns nil if end precedes start.
func Days(start, end DateKey) []DateKey {
	if end.Before(start) {
		return nil
	}
	var days []DateKey
	for d := start; !end.Before(d); d = d.Next() {
		days = append(days, d)
	}
	return days
}

// ActivityRecord is a single normalized running activity. Immutable once
// constructed.
type ActivityRecord struct {
	Date              DateKey  `json:"date"`
	Name              string   `json:"name"`
	DistanceMeters    float64  `json:"distance_meters"`
	MovingTimeSeconds int      `json:"moving_time_seconds"`
	Pace              *float64 `json:"pace,omitempty"`              // minutes per mile
	AverageHeartrate  *int     `json:"average_heartrate,omitempty"` // bpm
	MaxHeartrate      *int     `json:"max_heartrate,omitempty"`     // bpm
	Cadence           *int     `json:"cadence,omitempty"`           // total steps per minute
}

// SleepDay is the per-date sleep summary assembled from zero or more raw
// sessions, overlaid with a score from a separate endpoint.
type SleepDay struct {
	Date         DateKey `json:"date"`
	TotalSeconds *int    `json:"total_seconds,omitempty"`
	RemSeconds   *int    `json:"rem_seconds,omitempty"`
	DeepSeconds  *int    `json:"deep_seconds,omitempty"`
	LightSeconds *int    `json:"light_seconds,omitempty"`
	Score        *int    `json:"score,omitempty"` // 0-100
}

type ReadinessDay struct {
	Date  DateKey `json:"date"`
	Score *int    `json:"score,omitempty"` // 0-100
}

// DayEntry is the canonical merged unit for one calendar day. A day with
// only activities has nil Sleep and Readiness; a day with only biometric
// data has empty Runs.
type DayEntry struct {
	Date      DateKey          `json:"date"`
	Sleep     *SleepDay        `json:"sleep,omitempty"`
	Readiness *ReadinessDay    `json:"readiness,omitempty"`
	Runs      []ActivityRecord `json:"runs"`
}

// ScoreEntry is a dated score from a single-endpoint series (the daily
// sleep score or the readiness score).
type ScoreEntry struct {
	Date  DateKey `json:"date"`
	Score int     `json:"score"`
}

// SleepSession is one raw session fragment. Multiple fragments may share a
// date; their durations are summed per day.
type SleepSession struct {
	Date         DateKey `json:"date"`
	TotalSeconds int     `json:"total_seconds"`
	RemSeconds   int     `json:"rem_seconds"`
	DeepSeconds  int     `json:"deep_seconds"`
	LightSeconds int     `json:"light_seconds"`
	Score        *int    `json:"score,omitempty"`
}
