package forecast

import (
	"time"

	"github.com/mamadbah2/silofeed/internal/domain/models"
)

// Projection is the simulated weight curve of a silo after its last observation.
type Projection struct {
	Points []models.ProjectedPoint
	// Depleted is set when the weight reached zero within the horizon; DepletionAt
	// is then the timestamp of the first point at or below zero.
	Depleted    bool
	DepletionAt time.Time
}

// Project simulates the silo hour by hour from the last observation, drawing the
// reference intake for the simulated age scaled by the correction factor. Feed
// reserved as leftover is withheld until the flock reaches the dilution age.
func Project(last models.HourlyObservation, run models.ForecastRun, table models.ConsumptionTable, factor float64, opts Options) Projection {
	opts = opts.withDefaults()

	weight := last.WeightKg
	withheld := run.InitialLeftoverKg > 0
	if withheld {
		weight -= run.InitialLeftoverKg
	}

	proj := Projection{Points: make([]models.ProjectedPoint, 0, opts.HorizonHours)}
	for h := 1; h <= opts.HorizonHours; h++ {
		ts := last.Hour.Add(time.Duration(h) * time.Hour)
		age := models.AgeInDays(ts, run.HousingDate)
		kgPerHour := table.RateForAge(age) / 1000 / 24 * float64(run.BirdCount) * factor

		if withheld && age >= run.DilutionStartAge {
			weight += run.InitialLeftoverKg
			withheld = false
		}

		weight -= kgPerHour
		proj.Points = append(proj.Points, models.ProjectedPoint{Timestamp: ts, WeightKg: weight})

		if weight <= 0 {
			proj.Depleted = true
			proj.DepletionAt = ts
			break
		}
	}

	return proj
}
