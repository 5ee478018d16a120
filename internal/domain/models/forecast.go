package models

import (
	"fmt"
	"strings"
	"time"
)

// DefaultDilutionStartAge is the age at which withheld leftover feed returns
// to the silo when none is configured.
const DefaultDilutionStartAge = 19

// ForecastRun holds the parameters of one projection for one house.
type ForecastRun struct {
	HouseID           int       `json:"house_id"`
	HousingDate       time.Time `json:"housing_date"`
	Line              string    `json:"line"`
	BirdCount         int       `json:"bird_count"`
	DilutionStartAge  int       `json:"dilution_start_age"`
	InitialLeftoverKg float64   `json:"initial_leftover_kg"`
}

// NewForecastRun builds a run with the default dilution age and no leftover.
func NewForecastRun(houseID int, housingDate time.Time, line string, birdCount int) ForecastRun {
	return ForecastRun{
		HouseID:          houseID,
		HousingDate:      housingDate,
		Line:             NormalizeLine(line),
		BirdCount:        birdCount,
		DilutionStartAge: DefaultDilutionStartAge,
	}
}

// ForHouse returns a copy of the run bound to another house.
func (r ForecastRun) ForHouse(houseID int) ForecastRun {
	r.HouseID = houseID
	return r
}

// Validate ensures the run parameters can drive a projection.
func (r ForecastRun) Validate() error {
	switch {
	case r.BirdCount <= 0:
		return fmt.Errorf("%w: bird count must be positive, got %d", ErrInvalidParameter, r.BirdCount)
	case r.HousingDate.IsZero():
		return fmt.Errorf("%w: housing date is required", ErrInvalidParameter)
	case strings.TrimSpace(r.Line) == "":
		return fmt.Errorf("%w: genetic line is required", ErrInvalidParameter)
	case r.DilutionStartAge < 1:
		return fmt.Errorf("%w: dilution start age must be at least 1, got %d", ErrInvalidParameter, r.DilutionStartAge)
	case r.InitialLeftoverKg < 0:
		return fmt.Errorf("%w: leftover must not be negative, got %.2f", ErrInvalidParameter, r.InitialLeftoverKg)
	}
	return nil
}

// NormalizeLine lowercases and trims a genetic line name.
func NormalizeLine(line string) string {
	return strings.ToLower(strings.TrimSpace(line))
}

// DeliveryEvent is a feed delivery inferred from a jump in silo weight.
type DeliveryEvent struct {
	Timestamp  time.Time `json:"timestamp"`
	QuantityKg float64   `json:"quantity_kg"`
	AgeDays    int       `json:"age_days"`
}

// ProjectedPoint is the simulated silo weight at the end of one future hour.
type ProjectedPoint struct {
	Timestamp time.Time `json:"timestamp"`
	WeightKg  float64   `json:"weight_kg"`
}
