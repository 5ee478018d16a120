package forecast

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/mamadbah2/silofeed/internal/domain/models"
)

// Engine runs the forecasting pipeline. It holds no per-run state, so one
// engine can serve concurrent runs.
type Engine struct {
	opts   Options
	logger *zap.Logger
}

// HouseResult is the outcome of one house within a batch.
type HouseResult struct {
	HouseID int
	Report  *models.Report
	Err     error
}

// NewEngine wires an engine with the given tuning.
func NewEngine(opts Options, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{opts: opts.withDefaults(), logger: logger}
}

// Run forecasts the silo autonomy of run.HouseID from the raw samples.
func (e *Engine) Run(run models.ForecastRun, samples []models.RawSample, table models.ConsumptionTable) (*models.Report, error) {
	if err := run.Validate(); err != nil {
		return nil, err
	}
	// Lookups binary search the rows, so tables built as literals are re-checked.
	table, err := models.NewConsumptionTable(table.Line, table.Rows)
	if err != nil {
		return nil, err
	}

	series, err := BuildHourlySeries(samples, run.HouseID, run.HousingDate, e.opts)
	if err != nil {
		return nil, err
	}

	last := series[len(series)-1]
	if last.AgeDays < 1 {
		return nil, fmt.Errorf("%w: house %d: housing date %s is after the last reading %s",
			models.ErrInvalidParameter, run.HouseID, run.HousingDate.Format("2006-01-02"), last.Hour.Format("2006-01-02 15:04"))
	}

	estimate, err := EstimateRate(series, run.BirdCount, table, e.opts)
	if err != nil {
		return nil, fmt.Errorf("house %d: estimate rate: %w", run.HouseID, err)
	}

	deliveries := DetectDeliveries(series, e.opts.DeliveryThresholdKg, run.HousingDate)
	proj := Project(last, run, table, estimate.CorrectionFactor, e.opts)

	e.logger.Debug("forecast computed",
		zap.Int("house", run.HouseID),
		zap.Int("hourly_points", len(series)),
		zap.Int("deliveries", len(deliveries)),
		zap.Float64("correction_factor", estimate.CorrectionFactor),
		zap.Bool("depleted", proj.Depleted),
		zap.Int("projected_hours", len(proj.Points)))

	return AssembleReport(run, series, deliveries, estimate, proj, e.opts.Now()), nil
}

// RunBatch forecasts every run in parallel against the same samples and table.
// Each house succeeds or fails on its own; results are ordered by house id.
func (e *Engine) RunBatch(runs []models.ForecastRun, samples []models.RawSample, table models.ConsumptionTable) []HouseResult {
	results := make([]HouseResult, len(runs))

	var wg sync.WaitGroup
	wg.Add(len(runs))
	for i, run := range runs {
		go func(i int, run models.ForecastRun) {
			defer wg.Done()
			report, err := e.Run(run, samples, table)
			if err != nil {
				e.logger.Warn("house forecast failed", zap.Int("house", run.HouseID), zap.Error(err))
			}
			results[i] = HouseResult{HouseID: run.HouseID, Report: report, Err: err}
		}(i, run)
	}
	wg.Wait()

	sort.SliceStable(results, func(i, j int) bool { return results[i].HouseID < results[j].HouseID })
	return results
}
