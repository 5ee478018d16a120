package forecast

import (
	"time"

	"github.com/mamadbah2/silofeed/internal/domain/models"
)

// DetectDeliveries finds feed deliveries as hour-over-hour weight gains above
// thresholdKg. Gains at most one hour apart belong to the same delivery, whose
// quantity is the summed gain. The event is stamped with the hour of the
// smallest gain in the group.
func DetectDeliveries(series []models.HourlyObservation, thresholdKg float64, housingDate time.Time) []models.DeliveryEvent {
	events := make([]models.DeliveryEvent, 0)
	if len(series) < 2 {
		return events
	}

	var (
		open     bool
		lastHour time.Time
		current  models.DeliveryEvent
		minDelta float64
	)

	flush := func() {
		if open {
			current.AgeDays = models.AgeInDays(current.Timestamp, housingDate)
			events = append(events, current)
		}
		open = false
	}

	for i := 1; i < len(series); i++ {
		delta := series[i].WeightKg - series[i-1].WeightKg
		if delta <= thresholdKg {
			continue
		}

		hour := series[i].Hour
		if open && hour.Sub(lastHour) <= time.Hour {
			current.QuantityKg += delta
			if delta < minDelta {
				minDelta = delta
				current.Timestamp = hour
			}
		} else {
			flush()
			open = true
			minDelta = delta
			current = models.DeliveryEvent{Timestamp: hour, QuantityKg: delta}
		}
		lastHour = hour
	}
	flush()

	return events
}
