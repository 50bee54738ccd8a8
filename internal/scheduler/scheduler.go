package scheduler

import (
	"time"

	"carrental-backend/internal/jobs"
	"carrental-backend/internal/logger"

	"github.com/robfig/cron/v3"
)

// Scheduler manages cron job scheduling
type Scheduler struct {
	cron *cron.Cron
	jobs *jobs.JobRunner
}

// NewScheduler creates a new scheduler with the provided job runner
func NewScheduler(jobRunner *jobs.JobRunner) *Scheduler {
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithSeconds(),
	)

	s := &Scheduler{
		cron: c,
		jobs: jobRunner,
	}

	s.registerJobs()
	return s
}

// registerJobs registers all scheduled jobs with the cron scheduler
func (s *Scheduler) registerJobs() {
	cfg := s.jobs.Config().Scheduler

	spec := cfg.ReverifyStalePayments
	if spec == "" {
		// Every five minutes by default.
		spec = "0 */5 * * * *"
	}
	if _, err := s.cron.AddFunc(spec, s.jobs.ReverifyStalePayments); err != nil {
		logger.Error("Failed to register ReverifyStalePayments job", "error", err)
	}
}

// Start begins job scheduling
func (s *Scheduler) Start() {
	s.cron.Start()
	logger.Info("Scheduler started")
}

// Stop halts job scheduling and waits for running jobs to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("Scheduler stopped")
}
