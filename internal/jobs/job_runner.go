package jobs

import (
	"carrental-backend/internal/config"
	"carrental-backend/internal/logger"
	"carrental-backend/internal/service"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	paymentSvc service.PaymentService
	stale      StaleListing
	config     *config.Config
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(paymentSvc service.PaymentService, stale StaleListing, cfg *config.Config) *JobRunner {
	return &JobRunner{
		paymentSvc: paymentSvc,
		stale:      stale,
		config:     cfg,
	}
}

// Config exposes configuration to the scheduler
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName)
}
