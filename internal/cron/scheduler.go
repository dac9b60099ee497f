package cron

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Snapshotter produces one export snapshot
type Snapshotter interface {
	Snapshot(ctx context.Context) (string, error)
}

// Scheduler runs the periodic export job
type Scheduler struct {
	c      *cron.Cron
	logger zerolog.Logger
}

// NewScheduler registers the snapshot job on spec (standard five-field cron or descriptors like @daily)
func NewScheduler(spec string, job Snapshotter, newCtx func() (context.Context, context.CancelFunc), logger zerolog.Logger) (*Scheduler, error) {
	c := cron.New()

	_, err := c.AddFunc(spec, func() {
		ctx, cancel := newCtx()
		defer cancel()

		logger.Info().Msg("Running report export snapshot")
		path, err := job.Snapshot(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("Report export snapshot failed")
			return
		}
		logger.Info().Str("path", path).Msg("Report export snapshot saved")
	})
	if err != nil {
		return nil, err
	}

	return &Scheduler{c: c, logger: logger}, nil
}

// Start begins running jobs in the background
func (s *Scheduler) Start() {
	s.c.Start()
	s.logger.Info().Int("jobs", len(s.c.Entries())).Msg("Scheduler started")
}

// Stop halts the scheduler and waits for a running job to finish
func (s *Scheduler) Stop() {
	<-s.c.Stop().Done()
}
