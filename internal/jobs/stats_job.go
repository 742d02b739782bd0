// File: internal/jobs/stats_job.go
package jobs

import (
	"context"
	"time"

	"bookmarked_backend/internal/config"
	"bookmarked_backend/internal/platform/metrics"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Counter is anything that can report a row count.
type Counter interface {
	Count(ctx context.Context) (int64, error)
}

// LibraryCounters groups what the stats job counts.
type LibraryCounters struct {
	Accounts Counter
	Entries  Counter
}

// StatsJob periodically refreshes the library size gauges.
type StatsJob struct {
	counters      LibraryCounters
	metrics       *metrics.Metrics
	logger        *zap.Logger
	cfg           *config.Config
	cronScheduler *cron.Cron
}

// NewStatsJob creates a new StatsJob.
func NewStatsJob(counters LibraryCounters, m *metrics.Metrics, logger *zap.Logger, cfg *config.Config) *StatsJob {
	scheduler := cron.New(
		cron.WithLogger(NewCronLogger(logger.Named("cron"))),
		cron.WithChain(cron.SkipIfStillRunning(NewCronLogger(logger.Named("cron")))),
	)

	return &StatsJob{
		counters:      counters,
		metrics:       m,
		logger:        logger.Named("StatsJob"),
		cfg:           cfg,
		cronScheduler: scheduler,
	}
}

// SetupAndStart runs the job once, then schedules it on STATS_JOB_SCHEDULE.
// An empty schedule disables the job.
func (j *StatsJob) SetupAndStart() error {
	jobSpec := j.cfg.StatsJobSchedule
	if jobSpec == "" {
		j.logger.Warn("Stats job schedule not defined (STATS_JOB_SCHEDULE). Job will not run.")
		return nil
	}

	jobID, err := j.cronScheduler.AddFunc(jobSpec, j.Run)
	if err != nil {
		j.logger.Error("Failed to schedule stats job", zap.String("spec", jobSpec), zap.Error(err))
		return err
	}

	j.logger.Info("Stats job scheduled", zap.String("spec", jobSpec), zap.Any("jobID", jobID))
	go j.Run()
	j.cronScheduler.Start()
	return nil
}

// Run counts accounts and shelf entries and publishes them as gauges.
func (j *StatsJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	accounts, err := j.counters.Accounts.Count(ctx)
	if err != nil {
		j.logger.Error("Stats job failed to count accounts", zap.Error(err))
		return
	}
	entries, err := j.counters.Entries.Count(ctx)
	if err != nil {
		j.logger.Error("Stats job failed to count shelf entries", zap.Error(err))
		return
	}

	j.metrics.SetLibraryTotals(accounts, entries)
	j.logger.Debug("Library totals refreshed", zap.Int64("accounts", accounts), zap.Int64("shelf_entries", entries))
}

// Stop gracefully stops the cron scheduler.
func (j *StatsJob) Stop() {
	if j.cronScheduler == nil {
		return
	}
	j.logger.Info("Stopping stats job scheduler...")
	stopCtx := j.cronScheduler.Stop()
	select {
	case <-stopCtx.Done():
		j.logger.Info("Stats job scheduler stopped gracefully.")
	case <-time.After(10 * time.Second):
		j.logger.Warn("Stats job scheduler stop timed out.")
	}
}
