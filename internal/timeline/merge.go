package timeline

import "slices"

// Sources carries the normalized output of the upstream clients. Any slice
// may be empty; partial data is always preferable to failure.
type Sources struct {
	SleepScores   []ScoreEntry   // primary score source
	SleepSessions []SleepSession // raw fragments, secondary score source
	Readiness     []ScoreEntry
	Runs          []ActivityRecord
}

// Build merges all sources into a single per-date mapping.
//
// Overlay order: primary sleep scores seed the map, aggregated sessions
// overlay durations and scores, readiness overlays, then activities append.
// Durations are first-non-zero-wins while scores are last-write-wins; the
// asymmetry is intentional — the session series is the more recently synced
// score source, but an already populated duration must never regress.
func Build(src Sources) *DayMap {
	bySession := aggregateSessions(src.SleepSessions)

	m := NewDayMap()

	for _, s := range src.SleepScores {
		sd := m.getOrCreate(s.Date).ensureSleep()
		score := s.Score
		sd.Score = &score
		if agg, ok := bySession[s.Date]; ok {
			fillDurations(sd, agg)
		}
	}

	sessionDates := make([]DateKey, 0, len(bySession))
	for d := range bySession {
		sessionDates = append(sessionDates, d)
	}
	slices.Sort(sessionDates)
	for _, d := range sessionDates {
		agg := bySession[d]
		sd := m.getOrCreate(d).ensureSleep()
		fillDurations(sd, agg)
		if agg.Score != nil {
			score := *agg.Score
			sd.Score = &score
		}
	}

	for _, r := range src.Readiness {
		rd := m.getOrCreate(r.Date).ensureReadiness()
		score := r.Score
		rd.Score = &score
	}

	for _, run := range src.Runs {
		e := m.getOrCreate(run.Date)
		e.Runs = append(e.Runs, run)
	}

	return m
}

// fillDurations copies the aggregated durations onto sd only when its total
// is still unset or zero.
func fillDurations(sd *SleepDay, agg SleepSession) {
	if sd.TotalSeconds != nil && *sd.TotalSeconds != 0 {
		return
	}
	total, rem, deep, light := agg.TotalSeconds, agg.RemSeconds, agg.DeepSeconds, agg.LightSeconds
	sd.TotalSeconds = &total
	sd.RemSeconds = &rem
	sd.DeepSeconds = &deep
	sd.LightSeconds = &light
}

// aggregateSessions sums duration fragments sharing a date. The score is
// taken from the last fragment that reports one, in input order.
func aggregateSessions(sessions []SleepSession) map[DateKey]SleepSession {
	byDate := make(map[DateKey]SleepSession)
	for _, s := range sessions {
		agg := byDate[s.Date]
		agg.Date = s.Date
		agg.TotalSeconds += s.TotalSeconds
		agg.RemSeconds += s.RemSeconds
		agg.DeepSeconds += s.DeepSeconds
		agg.LightSeconds += s.LightSeconds
		if s.Score != nil {
			score := *s.Score
			agg.Score = &score
		}
		byDate[s.Date] = agg
	}
	return byDate
}
