package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
)

// Runner is the collection entrypoint the scheduler triggers.
type Runner interface {
	RunOnce(ctx context.Context, now time.Time) (int, error)
}

// Scheduler triggers a collection run at a fixed interval. Each run is
// independent; the collector carries no state between triggers.
type Scheduler struct {
	scheduler *gocron.Scheduler
	runner    Runner
	interval  time.Duration
	log       *logrus.Entry
}

// New creates a Scheduler running in UTC.
func New(runner Runner, interval time.Duration, log *logrus.Entry) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		runner:    runner,
		interval:  interval,
		log:       log,
	}
}

// Start schedules the periodic collection job and starts the underlying
// scheduler asynchronously.
func (s *Scheduler) Start() error {
	interval := s.interval
	if interval <= 0 {
		interval = time.Hour
	}

	_, err := s.scheduler.Every(interval).Do(func() {
		// Bound the run well under the schedule interval so runs
		// never overlap.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		count, err := s.runner.RunOnce(ctx, time.Now().UTC())
		if err != nil {
			s.log.Errorf("scheduled collection run failed: %v", err)
			return
		}
		s.log.WithField("rows", count).Info("scheduled collection run finished")
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
