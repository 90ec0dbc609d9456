// Copyright (c) 2026 Manabiya. All rights reserved.
// Author: satomata.dev@gmail.com

/*
Package janitor schedules recurring background maintenance jobs.

Expired sessions and stale password-reset tokens accumulate in the database
because logout and consumption only delete individual rows. The janitor sweeps
them on a cron schedule so the tables stay bounded without any operator action.
*/
package janitor

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// CleanupFunc removes expired rows and reports how many were deleted.
type CleanupFunc func(ctx context.Context) (int64, error)

// jobTimeout bounds a single sweep so a stuck backend cannot pile up runs.
const jobTimeout = 30 * time.Second

// Janitor runs registered cleanup jobs on a shared cron schedule.
type Janitor struct {
	cron   *cron.Cron
	logger *slog.Logger
}

// New creates a stopped Janitor. Register jobs with [Janitor.Add], then call
// [Janitor.Start].
func New(logger *slog.Logger) *Janitor {
	return &Janitor{
		cron:   cron.New(),
		logger: logger,
	}
}

/*
Add registers a named cleanup job on the given cron schedule.

Parameters:
  - name: Job identifier used in log output.
  - schedule: A cron expression, including descriptors like "@hourly".
  - job: The cleanup function to invoke.

Returns:
  - error: an error if the schedule expression cannot be parsed.
*/
func (j *Janitor) Add(name, schedule string, job CleanupFunc) error {
	_, err := j.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		start := time.Now()
		removed, err := job(ctx)
		if err != nil {
			j.logger.Error("janitor_job_failed",
				slog.String("job", name),
				slog.Any("error", err),
			)
			return
		}

		j.logger.Info("janitor_job_finished",
			slog.String("job", name),
			slog.Int64("removed", removed),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
	})
	return err
}

// Start begins running registered jobs in their own goroutine.
func (j *Janitor) Start() {
	j.cron.Start()
}

// Stop halts scheduling and waits for any running job to finish.
func (j *Janitor) Stop() {
	ctx := j.cron.Stop()
	<-ctx.Done()
}
