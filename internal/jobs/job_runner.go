package jobs

import (
	"sigap-backend/internal/config"
	"sigap-backend/internal/logger"
	"sigap-backend/internal/repository/postgres"
	"sigap-backend/internal/storage"
)

// JobRunner coordinates all scheduled maintenance jobs.
type JobRunner struct {
	store  *postgres.Store
	files  *storage.FileStore
	config *config.Config
}

func NewJobRunner(store *postgres.Store, files *storage.FileStore, cfg *config.Config) *JobRunner {
	return &JobRunner{
		store:  store,
		files:  files,
		config: cfg,
	}
}

// Config exposes the configuration for schedule registration.
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

// RunAllNightlyJobs runs every nightly job once (for manual execution).
func (jr *JobRunner) RunAllNightlyJobs() {
	jr.PurgeStagedPhotos()
	jr.PruneNotifications()
}
