package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/slothpixel/sloth/internal/util/slothlog"
)

var logger = slothlog.SubLogger("jobs")

type RunningJob struct {
	quitFinished chan struct{}
	name         string
}

// Start runs job in its own goroutine. Wait or MustWait observes its end.
func Start(name string, job func()) *RunningJob {
	if name == "" {
		logger.Fatal("Missing job name")
	}
	ret := RunningJob{quitFinished: make(chan struct{}, 1), name: name}
	go func() {
		job()
		ret.quitFinished <- struct{}{}
	}()
	return &ret
}

func (q *RunningJob) Wait(finishCTX context.Context) error {
	if q == nil || q.quitFinished == nil {
		return nil
	}
	logger.InfoF("Waiting %s goroutine to finish", q.name)

	// Golang doesn't support select with preference when both channels already have data,
	// therefore we simulate it with two select statements.
	select {
	case <-q.quitFinished:
		logger.InfoF("%s stopped", q.name)
		return nil
	default:
	}

	select {
	case <-q.quitFinished:
		logger.InfoF("%s stopped", q.name)
		return nil
	case <-finishCTX.Done():
		logger.ErrorF("Failed to stop %s goroutine within timeout", q.name)
		return fmt.Errorf("Failed to stop %s goroutine within timeout", q.name)
	}
}

func WaitAll(finishCTX context.Context, allJobs ...*RunningJob) {
	allOK := true
	for _, job := range allJobs {
		err := job.Wait(finishCTX)
		if err != nil {
			allOK = false
		}
	}
	if !allOK {
		logger.Error("Failed to finish all jobs")
	}
}

func (q *RunningJob) MustWait() {
	<-q.quitFinished
}

// Sleep is like time.Sleep, but responds to context cancellation
func Sleep(ctx context.Context, delay time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(delay):
	}
}
