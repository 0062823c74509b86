package jobs

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pascaldekloe/metrics/gostat"
)

var signals chan os.Signal
var exitSignal os.Signal
var signalWatcher *RunningJob
var mainContext context.Context

// InitiateShutdown is used by jobs which can't continue, e.g. the HTTP server on a bind error.
func InitiateShutdown() {
	signals <- syscall.SIGABRT
}

func ExitSignal() os.Signal {
	return exitSignal
}

func InitSignals() context.Context {
	signals = make(chan os.Signal, 20)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	// include Go runtime metrics
	gostat.CaptureEvery(5 * time.Second)

	var mainCancel context.CancelFunc
	mainContext, mainCancel = context.WithCancel(context.Background())

	signalWatcher = Start("SignalWatch", func() {
		exitSignal = <-signals
		logger.Warn("Shutting down initiated")
		mainCancel()
	})

	return mainContext
}

func WaitUntilSignal() {
	signalWatcher.MustWait()
}

// Assumes WaitUntilSignal finished therefore all jobs already started their shutdown.
func ShutdownWait(timeout time.Duration, allJobs ...*RunningJob) {
	if mainContext.Err() == nil {
		logger.Fatal("Maincontext is not cancelled, but wait for shutdown was initated")
	}
	logger.InfoF("Shutdown timeout %s", timeout)
	finishCTX, finishCancel := context.WithTimeout(context.Background(), timeout)
	defer finishCancel()
	WaitAll(finishCTX, allJobs...)
}
