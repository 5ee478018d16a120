package forecast

import "time"

const (
	defaultDeliveryThresholdKg = 500.0
	defaultMaxHourlyIntakeKg   = 500.0
	defaultTrailingWindow      = 24
	defaultGapLimit            = 3
	defaultHorizonHours        = 30 * 24
	minHourlyPoints            = 2
)

// Options tunes the pipeline. The zero value is completed by withDefaults.
type Options struct {
	// DeliveryThresholdKg is the hourly weight gain above which an hour counts as a delivery.
	DeliveryThresholdKg float64
	// MaxHourlyIntakeKg bounds plausible hourly consumption; larger drops are noise.
	MaxHourlyIntakeKg float64
	// TrailingWindow is the number of valid hourly intakes averaged.
	TrailingWindow int
	// GapLimit is the longest run of missing hours that gets interpolated.
	GapLimit int
	// HorizonHours caps the forward simulation.
	HorizonHours int
	// Now stamps the report; only GeneratedAt depends on it.
	Now func() time.Time
}

// DefaultOptions returns the production tuning.
func DefaultOptions() Options {
	return Options{}.withDefaults()
}

func (o Options) withDefaults() Options {
	if o.DeliveryThresholdKg <= 0 {
		o.DeliveryThresholdKg = defaultDeliveryThresholdKg
	}
	if o.MaxHourlyIntakeKg <= 0 {
		o.MaxHourlyIntakeKg = defaultMaxHourlyIntakeKg
	}
	if o.TrailingWindow <= 0 {
		o.TrailingWindow = defaultTrailingWindow
	}
	if o.GapLimit <= 0 {
		o.GapLimit = defaultGapLimit
	}
	if o.HorizonHours <= 0 {
		o.HorizonHours = defaultHorizonHours
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}
