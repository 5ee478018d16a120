package forecast

import (
	"time"

	"github.com/mamadbah2/silofeed/internal/domain/models"
)

// AssembleReport derives the headline figures of a run from its series,
// deliveries and projection.
func AssembleReport(run models.ForecastRun, series []models.HourlyObservation, deliveries []models.DeliveryEvent, estimate models.RateEstimate, proj Projection, generatedAt time.Time) *models.Report {
	last := series[len(series)-1]

	report := &models.Report{
		GeneratedAt:     generatedAt,
		Run:             run,
		CurrentWeightKg: last.WeightKg,
		CurrentAge:      last.AgeDays,
		LastObservation: last.Hour,
		Rate:            estimate,
		Deliveries:      deliveries,
		Hourly:          series,
		Projection:      proj.Points,
	}

	if !proj.Depleted {
		report.Autonomy = models.Autonomy{BeyondHorizon: true}
		return report
	}

	depletionAt := proj.DepletionAt
	depletionAge := models.AgeInDays(depletionAt, run.HousingDate)
	report.DepletionAt = &depletionAt
	report.DepletionAge = &depletionAge
	report.Autonomy = splitAutonomy(depletionAt.Sub(last.Hour))

	return report
}

func splitAutonomy(d time.Duration) models.Autonomy {
	if d < 0 {
		d = 0
	}
	totalHours := int(d / time.Hour)
	return models.Autonomy{Days: totalHours / 24, Hours: totalHours % 24}
}
