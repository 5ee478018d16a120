package forecast

import (
	"errors"
	"testing"

	"github.com/mamadbah2/silofeed/internal/domain/models"
)

func TestEstimateRateConstantDecline(t *testing.T) {
	series := hourlySeries(testStart, linearWeights(30, 8000, -10)...)

	est, err := EstimateRate(series, 25000, flatTable("cobb", 120), Options{})
	if err != nil {
		t.Fatalf("EstimateRate returned error: %v", err)
	}
	assertClose(t, "kg per hour", est.RecentKgPerHour, 10, 1e-9)
	assertClose(t, "grams per bird per day", est.RecentGramsPerBirdDay, 9.6, 1e-9)
	assertClose(t, "correction factor", est.CorrectionFactor, 9.6/120, 1e-12)
	if est.SamplesUsed != 24 {
		t.Fatalf("expected 24 samples in the trailing window, got %d", est.SamplesUsed)
	}
}

func TestEstimateRateIgnoresDeliveriesAndNoise(t *testing.T) {
	weights := linearWeights(30, 8000, -10)
	// A delivery at hour 10 and a sensor drop of 600 kg at hour 20.
	for i := 10; i < len(weights); i++ {
		weights[i] += 810
	}
	for i := 20; i < len(weights); i++ {
		weights[i] -= 590
	}

	est, err := EstimateRate(hourlySeries(testStart, weights...), 25000, flatTable("cobb", 120), Options{})
	if err != nil {
		t.Fatalf("EstimateRate returned error: %v", err)
	}
	assertClose(t, "kg per hour", est.RecentKgPerHour, 10, 1e-9)
}

func TestEstimateRateUsesTrailingWindow(t *testing.T) {
	weights := make([]float64, 0, 41)
	w := 9000.0
	for i := 0; i <= 10; i++ {
		weights = append(weights, w)
		w -= 40
	}
	w = weights[len(weights)-1]
	for i := 0; i < 30; i++ {
		w -= 10
		weights = append(weights, w)
	}

	est, err := EstimateRate(hourlySeries(testStart, weights...), 1000, flatTable("ross", 100), Options{})
	if err != nil {
		t.Fatalf("EstimateRate returned error: %v", err)
	}
	assertClose(t, "kg per hour", est.RecentKgPerHour, 10, 1e-9)
}

func TestEstimateRateFallsBackToLastTableRow(t *testing.T) {
	table, err := models.NewConsumptionTable("cobb", []models.ConsumptionTableRow{
		{AgeDays: 1, GramsPerBirdDay: 20},
		{AgeDays: 2, GramsPerBirdDay: 40},
		{AgeDays: 5, GramsPerBirdDay: 80},
	})
	if err != nil {
		t.Fatalf("NewConsumptionTable returned error: %v", err)
	}
	series := hourlySeries(testStart, linearWeights(5, 1000, -10)...)
	if series[len(series)-1].AgeDays <= table.MaxAge() {
		t.Fatalf("test series must be older than the table")
	}

	est, err := EstimateRate(series, 1000, table, Options{})
	if err != nil {
		t.Fatalf("EstimateRate returned error: %v", err)
	}
	if est.TableGramsPerBirdDay != 80 {
		t.Fatalf("expected fallback to the last row (80), got %.1f", est.TableGramsPerBirdDay)
	}
}

func TestEstimateRateErrors(t *testing.T) {
	tests := []struct {
		name   string
		series []models.HourlyObservation
		birds  int
		want   error
	}{
		{"single point", hourlySeries(testStart, 1000), 100, models.ErrInsufficientData},
		{"flat silo", hourlySeries(testStart, 1000, 1000, 1000), 100, models.ErrNoValidConsumption},
		{"only noise", hourlySeries(testStart, 1000, 300, 1200), 100, models.ErrNoValidConsumption},
		{"no birds", hourlySeries(testStart, 1000, 990), 0, models.ErrInvalidParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EstimateRate(tt.series, tt.birds, flatTable("cobb", 100), Options{})
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}
