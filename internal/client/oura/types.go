package oura

// PaginatedResponse is the envelope shared by all collection endpoints.
type PaginatedResponse[T any] struct {
	Data      []T     `json:"data"`
	NextToken *string `json:"next_token,omitempty"`
}

func (p *PaginatedResponse[T]) HasMore() bool {
	return p.NextToken != nil && *p.NextToken != ""
}

// DailySleepRecord is one row of the daily sleep summary series, the
// primary score source.
type DailySleepRecord struct {
	Day   string `json:"day"`
	Score *int   `json:"score"`
}

// SleepSessionRecord is one raw sleep session. Overnight sessions are
// sometimes attributed by the upstream to the following calendar day, so
// callers query with an extended window and re-filter.
type SleepSessionRecord struct {
	Day               string `json:"day"`
	TotalSleepSeconds int    `json:"total_sleep_duration"`
	RemSleepSeconds   int    `json:"rem_sleep_duration"`
	DeepSleepSeconds  int    `json:"deep_sleep_duration"`
	LightSleepSeconds int    `json:"light_sleep_duration"`
	Score             *int   `json:"score"`
}

// DailyReadinessRecord is one row of the readiness series.
type DailyReadinessRecord struct {
	Day   string `json:"day"`
	Score *int   `json:"score"`
}
