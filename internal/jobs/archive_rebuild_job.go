package jobs

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"geoshop/internal/core/application/usecases/commands"
)

// ArchiveRebuildJob periodically rebuilds missing result archives for
// processed orders, recovering from failed builds at processing time.
type ArchiveRebuildJob struct {
	handler commands.RebuildArchivesCommandHandler
	cron    *cron.Cron
	spec    string
	logger  *zap.Logger
}

// NewArchiveRebuildJob creates the rebuild job with a six-field cron spec.
func NewArchiveRebuildJob(
	handler commands.RebuildArchivesCommandHandler,
	spec string,
	logger *zap.Logger,
) *ArchiveRebuildJob {
	return &ArchiveRebuildJob{
		handler: handler,
		cron:    cron.New(cron.WithSeconds()),
		spec:    spec,
		logger:  logger.With(zap.String("component", "archive_rebuild_job")),
	}
}

// Start schedules the job.
func (j *ArchiveRebuildJob) Start() error {
	_, err := j.cron.AddFunc(j.spec, func() {
		rebuilt, handleErr := j.handler.Handle(context.Background())
		if handleErr != nil {
			j.logger.Error("archive rebuild job failed", zap.Error(handleErr))
			return
		}
		if rebuilt > 0 {
			j.logger.Info("archives rebuilt", zap.Int("count", rebuilt))
		}
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.Info("archive rebuild job started", zap.String("spec", j.spec))
	return nil
}

// Stop stops the job.
func (j *ArchiveRebuildJob) Stop() {
	j.cron.Stop()
	j.logger.Info("archive rebuild job stopped")
}
