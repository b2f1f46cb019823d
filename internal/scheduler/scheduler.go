// Package scheduler runs the periodic background jobs on cron schedules.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"fintrack/internal/logger"
)

// Job is a unit of background work.
type Job interface {
	Run(ctx context.Context) error
	Name() string
}

// Scheduler manages background jobs.
type Scheduler struct {
	cron    *cron.Cron
	log     *zap.SugaredLogger
	timeout time.Duration
}

// New creates a scheduler using standard five-field cron specs.
func New() *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		log:     logger.Named("scheduler"),
		timeout: 5 * time.Minute,
	}
}

// Start starts the scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Infow("Scheduler started", "jobs", len(s.cron.Entries()))
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("Scheduler stopped")
}

// AddJob registers job on schedule. An empty schedule leaves the job disabled.
func (s *Scheduler) AddJob(schedule string, job Job) error {
	if schedule == "" {
		s.log.Infow("Job disabled", "job", job.Name())
		return nil
	}

	_, err := s.cron.AddFunc(schedule, func() {
		if err := s.RunNow(job); err != nil {
			s.log.Errorw("Job failed", "job", job.Name(), "error", err)
		}
	})
	if err != nil {
		return err
	}

	s.log.Infow("Job registered", "job", job.Name(), "schedule", schedule)
	return nil
}

// RunNow executes a job immediately, outside its schedule.
func (s *Scheduler) RunNow(job Job) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	s.log.Debugw("Running job", "job", job.Name())
	if err := job.Run(ctx); err != nil {
		return err
	}
	s.log.Debugw("Job completed", "job", job.Name(), "duration", time.Since(start))
	return nil
}
