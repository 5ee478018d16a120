package reporting

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/silofeed/internal/domain/models"
	"github.com/mamadbah2/silofeed/internal/forecast"
	"github.com/mamadbah2/silofeed/internal/report"
)

// Forecaster is the part of the forecasting service a farm report needs.
type Forecaster interface {
	LoadSamples(ctx context.Context) ([]models.RawSample, error)
	FullReport(ctx context.Context, template models.ForecastRun, samples []models.RawSample) ([]forecast.HouseResult, error)
}

// Notifier delivers a rendered report.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// Service builds the full-farm autonomy report and pushes it to operators.
type Service struct {
	forecaster  Forecaster
	notifier    Notifier
	template    models.ForecastRun
	thresholdKg float64
	logger      *zap.Logger
}

// NewService wires a reporting service. template carries the parameters
// shared by every house; notifier may be nil when reports are only rendered.
func NewService(forecaster Forecaster, notifier Notifier, template models.ForecastRun, thresholdKg float64, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		forecaster:  forecaster,
		notifier:    notifier,
		template:    template,
		thresholdKg: thresholdKg,
		logger:      logger,
	}
}

// GenerateFarmReport loads the latest samples and renders every house.
func (s *Service) GenerateFarmReport(ctx context.Context) (string, []forecast.HouseResult, error) {
	samples, err := s.forecaster.LoadSamples(ctx)
	if err != nil {
		return "", nil, err
	}

	results, err := s.forecaster.FullReport(ctx, s.template, samples)
	if err != nil {
		return "", nil, fmt.Errorf("full report: %w", err)
	}

	return report.FormatBatch(results, s.thresholdKg), results, nil
}

// SendFarmReport generates the farm report and hands it to the notifier.
func (s *Service) SendFarmReport(ctx context.Context) error {
	if s.notifier == nil {
		return errors.New("no notifier configured")
	}

	text, results, err := s.GenerateFarmReport(ctx)
	if err != nil {
		return err
	}

	if err := s.notifier.Notify(ctx, text); err != nil {
		return fmt.Errorf("notify farm report: %w", err)
	}

	s.logger.Info("farm report sent", zap.Int("houses", len(results)))
	return nil
}
