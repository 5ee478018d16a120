package models

import "time"

// RateEstimate summarises the observed intake against the reference table.
type RateEstimate struct {
	RecentKgPerHour       float64 `json:"recent_kg_per_hour"`
	RecentGramsPerBirdDay float64 `json:"recent_grams_per_bird_day"`
	TableGramsPerBirdDay  float64 `json:"table_grams_per_bird_day"`
	CorrectionFactor      float64 `json:"correction_factor"`
	SamplesUsed           int     `json:"samples_used"`
}

// Autonomy is the remaining time until the projected depletion. BeyondHorizon
// is set when the silo does not empty within the projection horizon, in which
// case Days and Hours are zero.
type Autonomy struct {
	Days          int  `json:"days"`
	Hours         int  `json:"hours"`
	BeyondHorizon bool `json:"beyond_horizon"`
}

// Report is the data behind a silo autonomy report for one house.
type Report struct {
	GeneratedAt     time.Time           `json:"generated_at"`
	Run             ForecastRun         `json:"run"`
	CurrentWeightKg float64             `json:"current_weight_kg"`
	CurrentAge      int                 `json:"current_age"`
	LastObservation time.Time           `json:"last_observation"`
	Autonomy        Autonomy            `json:"autonomy"`
	DepletionAt     *time.Time          `json:"depletion_at,omitempty"`
	DepletionAge    *int                `json:"depletion_age,omitempty"`
	Rate            RateEstimate        `json:"rate"`
	Deliveries      []DeliveryEvent     `json:"deliveries"`
	Hourly          []HourlyObservation `json:"hourly"`
	Projection      []ProjectedPoint    `json:"projection"`
}
