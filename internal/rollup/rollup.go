package rollup

import (
	"fmt"
	"math"

	"github.com/stridelog/stridelog/internal/timeline"
)

const metersPerMile = 1609.344

// DayRow is one presentation row. Metric pointers are nil when no
// qualifying data exists for the day.
type DayRow struct {
	Date           timeline.DateKey          `json:"date"`
	Distance       float64                   `json:"distance"` // miles, 2 decimals
	Pace           *float64                  `json:"pace,omitempty"`
	Heartrate      *float64                  `json:"heartrate,omitempty"`
	Cadence        *float64                  `json:"cadence,omitempty"`
	MaxHeartrate   *int                      `json:"max_heartrate,omitempty"`
	Sleep          *string                   `json:"sleep,omitempty"`
	Rem            *string                   `json:"rem,omitempty"`
	Deep           *string                   `json:"deep,omitempty"`
	Light          *string                   `json:"light,omitempty"`
	SleepScore     *int                      `json:"sleep_score,omitempty"`
	ReadinessScore *int                      `json:"readiness_score,omitempty"`
	Runs           []timeline.ActivityRecord `json:"runs"`
}

// Rows produces one row per calendar day from start through end inclusive,
// in order, even for days with no data. Pure function of its inputs.
func Rows(m *timeline.DayMap, start, end timeline.DateKey) []DayRow {
	days := timeline.Days(start, end)
	rows := make([]DayRow, 0, len(days))
	for _, d := range days {
		row := DayRow{Date: d, Runs: []timeline.ActivityRecord{}}
		if e, ok := m.Get(d); ok {
			fillRow(&row, e)
		}
		rows = append(rows, row)
	}
	return rows
}

func fillRow(row *DayRow, e *timeline.DayEntry) {
	if len(e.Runs) > 0 {
		row.Runs = e.Runs

		var meters float64
		for _, r := range e.Runs {
			meters += r.DistanceMeters
		}
		row.Distance = round2(meters / metersPerMile)

		row.Pace = weightedAvg(e.Runs, func(r timeline.ActivityRecord) (float64, bool) {
			return deref(r.Pace), r.Pace != nil && *r.Pace > 0
		})
		row.Heartrate = weightedAvg(e.Runs, func(r timeline.ActivityRecord) (float64, bool) {
			return float64(derefInt(r.AverageHeartrate)), r.AverageHeartrate != nil && *r.AverageHeartrate > 0
		})
		row.Cadence = weightedAvg(e.Runs, func(r timeline.ActivityRecord) (float64, bool) {
			return float64(derefInt(r.Cadence)), r.Cadence != nil && *r.Cadence > 0
		})
		row.MaxHeartrate = maxHeartrate(e.Runs)
	}

	if e.Sleep != nil {
		row.Sleep = durationString(e.Sleep.TotalSeconds)
		row.Rem = durationString(e.Sleep.RemSeconds)
		row.Deep = durationString(e.Sleep.DeepSeconds)
		row.Light = durationString(e.Sleep.LightSeconds)
		row.SleepScore = copyInt(e.Sleep.Score)
	}
	if e.Readiness != nil {
		row.ReadinessScore = copyInt(e.Readiness.Score)
	}
}

// weightedAvg averages a per-activity metric weighted by each activity's
// distance, over activities with a valid positive value. Nil when no
// activity qualifies or the qualifying distance sums to zero.
func weightedAvg(runs []timeline.ActivityRecord, metric func(timeline.ActivityRecord) (float64, bool)) *float64 {
	var weighted, weight float64
	for _, r := range runs {
		v, ok := metric(r)
		if !ok {
			continue
		}
		weighted += v * r.DistanceMeters
		weight += r.DistanceMeters
	}
	if weight == 0 {
		return nil
	}
	avg := round2(weighted / weight)
	return &avg
}

func maxHeartrate(runs []timeline.ActivityRecord) *int {
	var maxHR *int
	for _, r := range runs {
		if r.MaxHeartrate == nil || *r.MaxHeartrate <= 0 {
			continue
		}
		if maxHR == nil || *r.MaxHeartrate > *maxHR {
			v := *r.MaxHeartrate
			maxHR = &v
		}
	}
	return maxHR
}

// durationString renders raw seconds as "7h 0m". Nil when the value is
// missing or zero.
func durationString(seconds *int) *string {
	if seconds == nil || *seconds == 0 {
		return nil
	}
	s := fmt.Sprintf("%dh %dm", *seconds/3600, (*seconds%3600)/60)
	return &s
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func derefInt(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
