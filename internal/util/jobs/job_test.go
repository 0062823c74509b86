package jobs_test

import (
	"context"
	"testing"
	"time"

	"github.com/slothpixel/sloth/internal/util/jobs"
	"github.com/stretchr/testify/require"
)

func TestWaitFinishedJob(t *testing.T) {
	job := jobs.Start("quick", func() {})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, job.Wait(ctx))
}

func TestWaitTimeout(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	job := jobs.Start("stuck", func() { <-release })

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	require.Error(t, job.Wait(ctx))
}

func TestSleepCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	job := jobs.Start("sleeper", func() {
		jobs.Sleep(ctx, time.Hour)
	})
	cancel()

	waitCtx, waitCancel := context.WithTimeout(context.Background(), time.Second)
	defer waitCancel()
	require.NoError(t, job.Wait(waitCtx))
}
