package forecast

import (
	"math"
	"testing"
	"time"

	"github.com/mamadbah2/silofeed/internal/domain/models"
)

var (
	testHousing = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	testStart   = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
)

func hourlySeries(start time.Time, weights ...float64) []models.HourlyObservation {
	series := make([]models.HourlyObservation, len(weights))
	for i, w := range weights {
		hour := start.Add(time.Duration(i) * time.Hour)
		series[i] = models.HourlyObservation{
			HouseID:  1,
			Hour:     hour,
			WeightKg: w,
			AgeDays:  models.AgeInDays(hour, testHousing),
		}
	}
	return series
}

func linearWeights(n int, start, slope float64) []float64 {
	weights := make([]float64, n)
	for i := range weights {
		weights[i] = start + slope*float64(i)
	}
	return weights
}

func flatTable(line string, grams float64) models.ConsumptionTable {
	return models.ConsumptionTable{Line: line, Rows: []models.ConsumptionTableRow{{AgeDays: 1, GramsPerBirdDay: grams}}}
}

func sample(house int, channel string, ts time.Time, kg float64) models.RawSample {
	return models.RawSample{Timestamp: ts, HouseID: house, ChannelID: channel, WeightKg: kg}
}

func assertClose(t *testing.T, name string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Fatalf("%s: expected %.6f, got %.6f", name, want, got)
	}
}
