package report

import (
	"fmt"
	"strings"

	"github.com/mamadbah2/silofeed/internal/domain/models"
	"github.com/mamadbah2/silofeed/internal/forecast"
)

const timeLayout = "02/01/2006 15:04"

// FormatReport renders one house report as plain text.
func FormatReport(r *models.Report, deliveryThresholdKg float64) string {
	var b strings.Builder

	b.WriteString("FEED AUTONOMY REPORT\n")
	b.WriteString("--------------------\n")
	b.WriteString(fmt.Sprintf("Generated: %s\n", r.GeneratedAt.Format(timeLayout)))
	b.WriteString(fmt.Sprintf("House: %d\n", r.Run.HouseID))
	b.WriteString(fmt.Sprintf("Line: %s\n", titleCase(r.Run.Line)))
	b.WriteString(fmt.Sprintf("Birds: %d\n\n", r.Run.BirdCount))

	b.WriteString("MAIN METRICS\n")
	b.WriteString("------------\n")
	b.WriteString(fmt.Sprintf("- Current silo weight: %.2f kg\n", r.CurrentWeightKg))
	b.WriteString(fmt.Sprintf("- Current flock age: %d days\n", r.CurrentAge))
	b.WriteString(fmt.Sprintf("- Last reading: %s\n", r.LastObservation.Format(timeLayout)))
	if r.Autonomy.BeyondHorizon {
		b.WriteString(fmt.Sprintf("- Estimated autonomy: > %d days\n", horizonDays(r)))
		b.WriteString("- Estimated depletion: N/A\n")
		b.WriteString("- Age at depletion: N/A\n")
	} else {
		b.WriteString(fmt.Sprintf("- Estimated autonomy: %d days and %d hours\n", r.Autonomy.Days, r.Autonomy.Hours))
		b.WriteString(fmt.Sprintf("- Estimated depletion: %s\n", formatTimePtr(r)))
		b.WriteString(fmt.Sprintf("- Age at depletion: %s\n", formatAgePtr(r.DepletionAge)))
	}
	b.WriteString(fmt.Sprintf("- Recent intake: %.2f kg/h (%.1f g/bird/day, table %.1f, factor %.2f)\n",
		r.Rate.RecentKgPerHour, r.Rate.RecentGramsPerBirdDay, r.Rate.TableGramsPerBirdDay, r.Rate.CorrectionFactor))
	if r.Run.InitialLeftoverKg > 0 {
		b.WriteString(fmt.Sprintf("- Leftover returned from day %d: %.2f kg\n", r.Run.DilutionStartAge, r.Run.InitialLeftoverKg))
	}

	b.WriteString("\nFEED DELIVERIES DETECTED\n")
	b.WriteString("------------------------\n")
	if len(r.Deliveries) == 0 {
		b.WriteString(fmt.Sprintf("No delivery above %.0f kg detected in the analysed period.\n", deliveryThresholdKg))
		return b.String()
	}

	b.WriteString(fmt.Sprintf("%-16s | %13s | %8s\n", "Delivery", "Quantity (kg)", "Age"))
	b.WriteString(strings.Repeat("-", 16) + "-|-" + strings.Repeat("-", 13) + "-|-" + strings.Repeat("-", 8) + "\n")
	for _, d := range r.Deliveries {
		b.WriteString(fmt.Sprintf("%-16s | %13.2f | %8d\n", d.Timestamp.Format(timeLayout), d.QuantityKg, d.AgeDays))
	}

	return b.String()
}

// FormatBatch renders every house of a full-farm run, failures included.
func FormatBatch(results []forecast.HouseResult, deliveryThresholdKg float64) string {
	var b strings.Builder

	ok := 0
	for _, res := range results {
		if res.Err == nil {
			ok++
		}
	}
	b.WriteString(fmt.Sprintf("FULL FARM REPORT: %d/%d houses forecast\n", ok, len(results)))

	for _, res := range results {
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("=== House %d ===\n", res.HouseID))
		if res.Err != nil {
			b.WriteString(fmt.Sprintf("Forecast failed: %v\n", res.Err))
			continue
		}
		b.WriteString(FormatReport(res.Report, deliveryThresholdKg))
	}

	return b.String()
}

func horizonDays(r *models.Report) int {
	if n := len(r.Projection); n > 0 {
		return int(r.Projection[n-1].Timestamp.Sub(r.LastObservation).Hours()) / 24
	}
	return forecast.DefaultOptions().HorizonHours / 24
}

func formatTimePtr(r *models.Report) string {
	if r.DepletionAt == nil {
		return "N/A"
	}
	return r.DepletionAt.Format(timeLayout)
}

func formatAgePtr(age *int) string {
	if age == nil {
		return "N/A"
	}
	return fmt.Sprintf("%d days", *age)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
