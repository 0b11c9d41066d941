package strava

// Activity is the summary shape returned by the activity listing.
// StartDateLocal carries the activity's wall-clock time in its own
// timezone; its date components are the activity's local calendar date.
type Activity struct {
	ID                int64   `json:"id"`
	Name              string  `json:"name"`
	Type              string  `json:"type"`
	SportType         string  `json:"sport_type"`
	DistanceMeters    float64 `json:"distance"`
	MovingTimeSeconds int     `json:"moving_time"`
	StartDateLocal    string  `json:"start_date_local"`
	AverageHeartrate  float64 `json:"average_heartrate"`
	MaxHeartrate      float64 `json:"max_heartrate"`
	AverageCadence    float64 `json:"average_cadence"` // per-limb strides/min
}
