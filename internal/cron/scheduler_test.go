package cron

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingJob struct{ runs int }

func (j *countingJob) Snapshot(ctx context.Context) (string, error) {
	j.runs++
	return "snapshots/x.xlsx", nil
}

func background() (context.Context, context.CancelFunc) {
	return context.WithCancel(context.Background())
}

func TestNewSchedulerRejectsBadSpec(t *testing.T) {
	_, err := NewScheduler("every tuesday", &countingJob{}, background, zerolog.Nop())
	assert.Error(t, err)
}

func TestSchedulerStartStop(t *testing.T) {
	for _, spec := range []string{"0 2 * * *", "@daily", "@every 1h"} {
		s, err := NewScheduler(spec, &countingJob{}, background, zerolog.Nop())
		require.NoError(t, err, spec)
		s.Start()
		s.Stop()
	}
}
