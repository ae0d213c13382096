package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"geoshop/internal/core/application/usecases/commands"
)

// OrderArchivingJob periodically archives processed orders whose retention
// window has passed, dropping their result files.
type OrderArchivingJob struct {
	handler   commands.ArchiveOrdersCommandHandler
	cron      *cron.Cron
	spec      string
	retention time.Duration
	logger    *zap.Logger
}

// NewOrderArchivingJob creates the archiving job. The cron spec uses the
// six-field form with seconds; retention is how long processed orders keep
// their result files.
func NewOrderArchivingJob(
	handler commands.ArchiveOrdersCommandHandler,
	spec string,
	retention time.Duration,
	logger *zap.Logger,
) *OrderArchivingJob {
	return &OrderArchivingJob{
		handler:   handler,
		cron:      cron.New(cron.WithSeconds()),
		spec:      spec,
		retention: retention,
		logger:    logger.With(zap.String("component", "order_archiving_job")),
	}
}

// Start schedules the job.
func (j *OrderArchivingJob) Start() error {
	_, err := j.cron.AddFunc(j.spec, func() {
		ctx := context.Background()

		cmd, cmdErr := commands.NewArchiveOrdersCommand(time.Now().Add(-j.retention))
		if cmdErr != nil {
			j.logger.Error("order archiving job misconfigured", zap.Error(cmdErr))
			return
		}

		archived, handleErr := j.handler.Handle(ctx, cmd)
		if handleErr != nil {
			j.logger.Error("order archiving job failed", zap.Error(handleErr))
			return
		}
		if archived > 0 {
			j.logger.Info("orders archived", zap.Int("count", archived))
		}
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.Info("order archiving job started", zap.String("spec", j.spec))
	return nil
}

// Stop stops the job.
func (j *OrderArchivingJob) Stop() {
	j.cron.Stop()
	j.logger.Info("order archiving job stopped")
}
