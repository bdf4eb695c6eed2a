package jobs

import (
	"context"
	"time"

	"sigap-backend/internal/logger"
)

// PurgeStagedPhotos removes staged draft photos older than the configured
// TTL that no pending submission still references. Files pinned by a live
// draft are kept regardless of age so a slow review never loses evidence.
func (jr *JobRunner) PurgeStagedPhotos() {
	jr.runWithRecovery("PurgeStagedPhotos", func() {
		ctx := context.Background()

		referenced, err := jr.store.StagedFilenames(ctx)
		if err != nil {
			logger.Error("Failed to load referenced staged photos", "error", err)
			return
		}
		staged, err := jr.files.ListStaged()
		if err != nil {
			logger.Error("Failed to list staged photos", "error", err)
			return
		}

		cutoff := time.Now().Add(-time.Duration(jr.config.Uploads.StagedTTLHours) * time.Hour)
		removed := 0
		for _, file := range staged {
			if _, pinned := referenced[file.Name]; pinned {
				continue
			}
			if file.ModTime.After(cutoff) {
				continue
			}
			if err := jr.files.DeleteStaged(file.Name); err != nil {
				logger.Error("Failed to remove staged photo", "filename", file.Name, "error", err)
				continue
			}
			removed++
		}
		logger.Info("Staged photo purge finished", "scanned", len(staged), "removed", removed)
	})
}

// PruneNotifications deletes read notifications older than the configured
// retention window. Unread ones are never touched.
func (jr *JobRunner) PruneNotifications() {
	jr.runWithRecovery("PruneNotifications", func() {
		ctx := context.Background()

		cutoff := time.Now().AddDate(0, 0, -jr.config.Scheduler.NotificationRetentionDays)
		deleted, err := jr.store.DeleteReadBefore(ctx, cutoff)
		if err != nil {
			logger.Error("Failed to prune notifications", "error", err)
			return
		}
		logger.Info("Notification prune finished", "deleted", deleted, "cutoff", cutoff.Format("2006-01-02"))
	})
}
