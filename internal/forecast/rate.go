package forecast

import (
	"fmt"

	"github.com/mamadbah2/silofeed/internal/domain/models"
)

// HourlyIntake returns the feed consumed in each hour of the series, positive
// when the silo weight drops. The first observation has no predecessor and is
// skipped, so the result has len(series)-1 values.
func HourlyIntake(series []models.HourlyObservation) []float64 {
	if len(series) < 2 {
		return nil
	}
	intake := make([]float64, 0, len(series)-1)
	for i := 1; i < len(series); i++ {
		intake = append(intake, -(series[i].WeightKg - series[i-1].WeightKg))
	}
	return intake
}

// EstimateRate averages the most recent plausible hourly intakes and compares
// them to the reference table at the current flock age.
func EstimateRate(series []models.HourlyObservation, birdCount int, table models.ConsumptionTable, opts Options) (models.RateEstimate, error) {
	opts = opts.withDefaults()

	if len(series) < minHourlyPoints {
		return models.RateEstimate{}, fmt.Errorf("%w: %d hourly points, need %d", models.ErrInsufficientData, len(series), minHourlyPoints)
	}
	if birdCount <= 0 {
		return models.RateEstimate{}, fmt.Errorf("%w: bird count must be positive, got %d", models.ErrInvalidParameter, birdCount)
	}

	valid := make([]float64, 0, len(series))
	for _, kg := range HourlyIntake(series) {
		if kg > 0 && kg < opts.MaxHourlyIntakeKg {
			valid = append(valid, kg)
		}
	}
	if len(valid) == 0 {
		return models.RateEstimate{}, models.ErrNoValidConsumption
	}

	if len(valid) > opts.TrailingWindow {
		valid = valid[len(valid)-opts.TrailingWindow:]
	}
	sum := 0.0
	for _, kg := range valid {
		sum += kg
	}
	kgPerHour := sum / float64(len(valid))
	gramsPerBirdDay := kgPerHour * 1000 * 24 / float64(birdCount)

	age := series[len(series)-1].AgeDays
	tableRate := table.RateForAge(age)
	if tableRate <= 0 {
		return models.RateEstimate{}, fmt.Errorf("%w: line %q has no positive rate for age %d", models.ErrInvalidTable, table.Line, age)
	}

	return models.RateEstimate{
		RecentKgPerHour:       kgPerHour,
		RecentGramsPerBirdDay: gramsPerBirdDay,
		TableGramsPerBirdDay:  tableRate,
		CorrectionFactor:      gramsPerBirdDay / tableRate,
		SamplesUsed:           len(valid),
	}, nil
}
