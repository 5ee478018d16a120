package models

import "time"

// RawSample is one load-cell reading as exported by the sensor collector.
type RawSample struct {
	Timestamp time.Time
	HouseID   int
	ChannelID string
	WeightKg  float64
}

// HourlyObservation is the cleaned silo weight of a house for one clock hour.
type HourlyObservation struct {
	HouseID  int       `json:"house_id"`
	Hour     time.Time `json:"hour"`
	WeightKg float64   `json:"weight_kg"`
	AgeDays  int       `json:"age_days"`
}

// AgeInDays returns the 1-indexed flock age on the calendar day of t.
func AgeInDays(t, housingDate time.Time) int {
	return daysBetween(housingDate, t) + 1
}

func daysBetween(from, to time.Time) int {
	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()
	start := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	end := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start).Hours() / 24)
}
