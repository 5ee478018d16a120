package forecast

import (
	"fmt"
	"sort"
	"time"

	"github.com/mamadbah2/silofeed/internal/domain/models"
)

type hourBucket struct {
	sum   float64
	count int
}

// BuildHourlySeries turns the raw load-cell samples of one house into a cleaned
// hourly weight series. Each channel is averaged per clock hour, channels are
// summed, zero readings are treated as dropouts and short gaps are bridged by
// linear interpolation.
func BuildHourlySeries(samples []models.RawSample, houseID int, housingDate time.Time, opts Options) ([]models.HourlyObservation, error) {
	opts = opts.withDefaults()

	channels := make(map[string]map[time.Time]*hourBucket)
	var first, last time.Time
	matched := 0

	for _, s := range samples {
		if s.HouseID != houseID {
			continue
		}
		hour := s.Timestamp.Truncate(time.Hour)
		if matched == 0 || hour.Before(first) {
			first = hour
		}
		if matched == 0 || hour.After(last) {
			last = hour
		}
		matched++

		buckets, ok := channels[s.ChannelID]
		if !ok {
			buckets = make(map[time.Time]*hourBucket)
			channels[s.ChannelID] = buckets
		}
		b, ok := buckets[hour]
		if !ok {
			b = &hourBucket{}
			buckets[hour] = b
		}
		b.sum += s.WeightKg
		b.count++
	}

	if matched == 0 {
		return nil, fmt.Errorf("house %d: %w", houseID, models.ErrEmptyHouseData)
	}

	slots := int(last.Sub(first)/time.Hour) + 1
	// Channels are summed in a fixed order so repeated runs are bit-identical.
	ids := make([]string, 0, len(channels))
	for id := range channels {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	weights := make([]float64, slots)
	for _, id := range ids {
		for hour, b := range channels[id] {
			weights[int(hour.Sub(first)/time.Hour)] += b.sum / float64(b.count)
		}
	}

	known := make([]bool, slots)
	for i, w := range weights {
		known[i] = w > 0
	}
	fillGaps(weights, known, opts.GapLimit)

	series := make([]models.HourlyObservation, 0, slots)
	for i := range weights {
		if !known[i] {
			continue
		}
		hour := first.Add(time.Duration(i) * time.Hour)
		series = append(series, models.HourlyObservation{
			HouseID:  houseID,
			Hour:     hour,
			WeightKg: weights[i],
			AgeDays:  models.AgeInDays(hour, housingDate),
		})
	}

	sort.SliceStable(series, func(i, j int) bool { return series[i].Hour.Before(series[j].Hour) })
	return series, nil
}

// fillGaps interpolates runs of at most limit unknown slots that sit between
// two known slots. Longer runs and runs touching either end stay unknown.
func fillGaps(weights []float64, known []bool, limit int) {
	i := 0
	for i < len(weights) {
		if known[i] {
			i++
			continue
		}
		start := i
		for i < len(weights) && !known[i] {
			i++
		}
		end := i // first known slot after the run, or len
		gap := end - start
		if start == 0 || end == len(weights) || gap > limit {
			continue
		}

		left, right := weights[start-1], weights[end]
		step := (right - left) / float64(gap+1)
		for k := 0; k < gap; k++ {
			weights[start+k] = left + step*float64(k+1)
			known[start+k] = true
		}
	}
}
