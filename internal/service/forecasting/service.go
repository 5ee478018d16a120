package forecasting

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/silofeed/internal/domain/models"
	"github.com/mamadbah2/silofeed/internal/forecast"
	"github.com/mamadbah2/silofeed/internal/ingest"
)

// ErrNoSensorSource is returned by LoadSamples when no source is configured.
var ErrNoSensorSource = errors.New("no sensor source configured")

// TableSource resolves the reference consumption table of a genetic line.
type TableSource interface {
	ConsumptionTable(ctx context.Context, line string) (models.ConsumptionTable, error)
}

// SensorSource yields the raw samples of every house.
type SensorSource interface {
	Samples(ctx context.Context) ([]models.RawSample, error)
}

// Service runs forecasts against the configured table store.
type Service struct {
	engine  *forecast.Engine
	tables  TableSource
	sensors SensorSource
	logger  *zap.Logger
}

// NewService wires a forecasting service. sensors may be nil when samples
// always come from callers.
func NewService(engine *forecast.Engine, tables TableSource, sensors SensorSource, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{engine: engine, tables: tables, sensors: sensors, logger: logger}
}

// LoadSamples reads the configured sensor source.
func (s *Service) LoadSamples(ctx context.Context) ([]models.RawSample, error) {
	if s.sensors == nil {
		return nil, ErrNoSensorSource
	}
	samples, err := s.sensors.Samples(ctx)
	if err != nil {
		return nil, fmt.Errorf("load samples: %w", err)
	}
	s.logger.Debug("samples loaded", zap.Int("count", len(samples)))
	return samples, nil
}

// Forecast projects a single house.
func (s *Service) Forecast(ctx context.Context, run models.ForecastRun, samples []models.RawSample) (*models.Report, error) {
	run.Line = models.NormalizeLine(run.Line)
	if err := run.Validate(); err != nil {
		return nil, err
	}

	table, err := s.tables.ConsumptionTable(ctx, run.Line)
	if err != nil {
		return nil, err
	}

	report, err := s.engine.Run(run, samples, table)
	if err != nil {
		return nil, err
	}

	s.logger.Info("house forecast completed",
		zap.Int("house", run.HouseID),
		zap.Bool("beyond_horizon", report.Autonomy.BeyondHorizon),
		zap.Int("autonomy_days", report.Autonomy.Days))
	return report, nil
}

// FullReport forecasts every house present in samples with the parameters of
// template. Per-house failures are returned in the results; the error is
// reserved for problems shared by all houses.
func (s *Service) FullReport(ctx context.Context, template models.ForecastRun, samples []models.RawSample) ([]forecast.HouseResult, error) {
	template.Line = models.NormalizeLine(template.Line)
	template.HouseID = 0
	if err := template.Validate(); err != nil {
		return nil, err
	}

	houses := ingest.Houses(samples)
	if len(houses) == 0 {
		return nil, fmt.Errorf("full report: %w", models.ErrEmptyHouseData)
	}

	table, err := s.tables.ConsumptionTable(ctx, template.Line)
	if err != nil {
		return nil, err
	}

	runs := make([]models.ForecastRun, len(houses))
	for i, house := range houses {
		runs[i] = template.ForHouse(house)
	}

	results := s.engine.RunBatch(runs, samples, table)

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
		}
	}
	s.logger.Info("full report completed", zap.Int("houses", len(results)), zap.Int("failed", failed))
	return results, nil
}
