package scheduler

import (
	"context"
	"fmt"
	"time"

	"question_cycle_service/internal/app"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// DefaultRunTimeout bounds one rollover run.
const DefaultRunTimeout = 2 * time.Minute

// Refresher recomputes the current cycle and refreshes cached assignments.
type Refresher interface {
	RefreshAssignments(ctx context.Context) (app.RolloverResult, error)
}

// Announcer is told about every successful rollover.
type Announcer interface {
	AnnounceRollover(ctx context.Context, result app.RolloverResult) error
}

type RolloverScheduler struct {
	cronEngine *cron.Cron
	refresher  Refresher
	announcer  Announcer
	logger     *logrus.Entry
	cronSpec   string
	timeout    time.Duration
}

func NewRolloverScheduler(
	refresher Refresher,
	logger *logrus.Entry,
	cronSpec string, // e.g., "0 19 * * 1" (19:00 every Monday)
	loc *time.Location, // Cycle reference timezone, not the server's
) *RolloverScheduler {
	return &RolloverScheduler{
		cronEngine: cron.New(
			cron.WithLocation(loc),
			cron.WithChain(cron.Recover(cron.PrintfLogger(logger))),
		),
		refresher: refresher,
		logger:    logger,
		cronSpec:  cronSpec,
		timeout:   DefaultRunTimeout,
	}
}

// SetAnnouncer registers an optional rollover announcer. Call before Start.
func (s *RolloverScheduler) SetAnnouncer(a Announcer) {
	s.announcer = a
}

func (s *RolloverScheduler) Start() error {
	s.logger.Info("Starting rollover scheduler...")

	_, err := s.cronEngine.AddFunc(s.cronSpec, func() {
		s.logger.Info("Cron job triggered for cycle rollover.")
		s.RunOnce(context.Background())
	})
	if err != nil {
		return fmt.Errorf("could not add rollover cron job %q: %w", s.cronSpec, err)
	}

	s.cronEngine.Start()
	s.logger.WithField("cron_spec", s.cronSpec).Info("Rollover scheduler started.")
	return nil
}

// RunOnce performs a single rollover. Failures are logged and swallowed: the next
// trigger is the retry, and resolver misses read the store directly meanwhile.
func (s *RolloverScheduler) RunOnce(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, err := s.refresher.RefreshAssignments(ctx)
	if err != nil {
		s.logger.WithError(err).WithField("cycle", result.Cycle).Error("Error during cycle rollover")
		return
	}
	s.logger.WithFields(logrus.Fields{
		"cycle":   result.Cycle,
		"regions": len(result.Regions),
	}).Info("Cycle rollover completed successfully.")

	if s.announcer == nil {
		return
	}
	if err := s.announcer.AnnounceRollover(ctx, result); err != nil {
		s.logger.WithError(err).Warn("Failed to announce cycle rollover")
	}
}

func (s *RolloverScheduler) Stop() {
	s.logger.Info("Stopping rollover scheduler...")
	ctx := s.cronEngine.Stop() // Stops the scheduler from adding new jobs, waits for running jobs.
	<-ctx.Done()               // Wait for graceful shutdown
	s.logger.Info("Rollover scheduler gracefully stopped.")
}
