package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// FarmReporter produces and delivers the full-farm report.
type FarmReporter interface {
	SendFarmReport(ctx context.Context) error
}

// Scheduler runs the farm report on a cron schedule.
type Scheduler struct {
	cron     *cron.Cron
	spec     string
	reporter FarmReporter
	timeout  time.Duration
	logger   *zap.Logger
}

// NewScheduler creates a scheduler for the standard five-field cron spec,
// evaluated in loc.
func NewScheduler(spec string, loc *time.Location, reporter FarmReporter, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		spec:     spec,
		reporter: reporter,
		timeout:  2 * time.Minute,
		logger:   logger,
	}
}

// Start registers the report job and starts the scheduler.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.sendFarmReport); err != nil {
		return fmt.Errorf("schedule farm report %q: %w", s.spec, err)
	}

	s.logger.Info("starting scheduler", zap.String("schedule", s.spec))
	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running report to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

// Next returns the next planned run, or the zero time before Start.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

func (s *Scheduler) sendFarmReport() {
	s.logger.Info("generating farm report")
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.reporter.SendFarmReport(ctx); err != nil {
		s.logger.Error("failed to send farm report", zap.Error(err))
		return
	}
	s.logger.Info("farm report sent successfully")
}
