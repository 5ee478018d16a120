package forecast

import (
	"testing"
	"time"
)

func TestDetectDeliveries(t *testing.T) {
	decline := func(n int) []float64 { return linearWeights(n, 5000, -10) }

	tests := []struct {
		name       string
		jumps      map[int]float64
		wantHours  []int
		wantAmount []float64
	}{
		{
			name:       "single jump",
			jumps:      map[int]float64{5: 800},
			wantHours:  []int{5},
			wantAmount: []float64{800},
		},
		{
			name:       "jumps two hours apart stay separate",
			jumps:      map[int]float64{3: 700, 5: 900},
			wantHours:  []int{3, 5},
			wantAmount: []float64{700, 900},
		},
		{
			name:       "adjacent jumps merge",
			jumps:      map[int]float64{3: 600, 4: 900},
			wantHours:  []int{3},
			wantAmount: []float64{1500},
		},
		{
			name:       "merged event takes the hour of the smallest gain",
			jumps:      map[int]float64{3: 900, 4: 600},
			wantHours:  []int{4},
			wantAmount: []float64{1500},
		},
		{
			name:  "gain at the threshold is not a delivery",
			jumps: map[int]float64{4: 500},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			weights := decline(12)
			// Each jump is on top of the baseline decline, so the hourly delta is
			// exactly the jump size.
			offset := 0.0
			for i := range weights {
				if kg, ok := tt.jumps[i]; ok {
					offset += kg + 10
				}
				weights[i] += offset
			}

			events := DetectDeliveries(hourlySeries(testStart, weights...), 500, testHousing)
			if len(events) != len(tt.wantHours) {
				t.Fatalf("expected %d events, got %d (%+v)", len(tt.wantHours), len(events), events)
			}
			for i, ev := range events {
				wantTS := testStart.Add(time.Duration(tt.wantHours[i]) * time.Hour)
				if !ev.Timestamp.Equal(wantTS) {
					t.Errorf("event %d: expected timestamp %s, got %s", i, wantTS, ev.Timestamp)
				}
				assertClose(t, "quantity", ev.QuantityKg, tt.wantAmount[i], 1e-9)
				if ev.AgeDays != 10 {
					t.Errorf("event %d: expected age 10, got %d", i, ev.AgeDays)
				}
			}
		})
	}
}

func TestDetectDeliveriesWithoutEventsReturnsEmptySlice(t *testing.T) {
	events := DetectDeliveries(hourlySeries(testStart, 1000, 990, 980), 500, testHousing)
	if events == nil || len(events) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", events)
	}
}
