package jobs

import (
	"fmt"
)

// JobManager coordinates the scheduled jobs of the application through one
// start/stop interface.
type JobManager struct {
	orderArchivingJob *OrderArchivingJob
	archiveRebuildJob *ArchiveRebuildJob
}

// NewJobManager creates a manager over the given jobs.
func NewJobManager(
	orderArchivingJob *OrderArchivingJob,
	archiveRebuildJob *ArchiveRebuildJob,
) *JobManager {
	return &JobManager{
		orderArchivingJob: orderArchivingJob,
		archiveRebuildJob: archiveRebuildJob,
	}
}

// StartAll starts every scheduled job. If one fails to start, already
// started jobs are stopped again.
func (jm *JobManager) StartAll() error {
	if err := jm.orderArchivingJob.Start(); err != nil {
		return fmt.Errorf("failed to start order archiving job: %w", err)
	}

	if err := jm.archiveRebuildJob.Start(); err != nil {
		jm.orderArchivingJob.Stop()
		return fmt.Errorf("failed to start archive rebuild job: %w", err)
	}

	return nil
}

// StopAll stops every scheduled job.
func (jm *JobManager) StopAll() {
	jm.archiveRebuildJob.Stop()
	jm.orderArchivingJob.Stop()
}
