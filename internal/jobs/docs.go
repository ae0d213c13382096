// Package jobs provides scheduled background tasks built on
// github.com/robfig/cron/v3.
//
// Two jobs run in the background:
//
//  1. OrderArchivingJob - archives processed orders past their retention
//     window and removes their files from the media store
//  2. ArchiveRebuildJob - rebuilds missing result archives so downloads
//     keep working after a failed build
//
// Jobs are managed through JobManager:
//
//	jobManager := jobs.NewJobManager(archivingJob, rebuildJob)
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// Both jobs take their schedule as a six-field cron expression with a
// seconds column.
package jobs
