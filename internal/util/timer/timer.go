// Reports averages and histograms.
// These metrics will show up at /metrics as timer_* histograms
// There is a separate /debug/timers page for an overview of these metrics only.
package timer

import (
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/pascaldekloe/metrics"
)

type Timer struct {
	histogram *metrics.Histogram
}

var allTimers struct {
	sync.RWMutex
	timers map[string]Timer
	order  []string
}

const namePrefix = "timer_"

// NewMilli returns the timer registered under name, creating it on first use.
// Buckets are sized for requests and remote calls.
func NewMilli(name string) Timer {
	allTimers.Lock()
	defer allTimers.Unlock()
	if t, ok := allTimers.timers[name]; ok {
		return t
	}
	if allTimers.timers == nil {
		allTimers.timers = map[string]Timer{}
	}
	ret := Timer{histogram: metrics.MustHistogram(
		namePrefix+name,
		"Timing histogram for : "+name,
		0.001, 0.01, 0.05, 0.1, 0.2, 0.5, 1, 2, 4)}
	allTimers.timers[name] = ret
	allTimers.order = append(allTimers.order, name)
	return ret
}

// Usage, note the final ():
// defer t.One()()
func (t Timer) One() func() {
	t0 := time.Now()
	return func() {
		t.histogram.AddSince(t0)
	}
}

// Writes timing reports as plain text.
func ServeHTTP(resp http.ResponseWriter, req *http.Request) {
	allTimers.RLock()
	defer allTimers.RUnlock()
	bucketValues := make([]uint64, 0, 20)
	for _, name := range allTimers.order {
		t := allTimers.timers[name]
		fmt.Fprintf(resp, "%s\n", name)
		vals, count, sum := t.histogram.Get(bucketValues)
		bounds := t.histogram.BucketBounds
		fmt.Fprintf(resp, "    Count: %d\n", count)
		if count != 0 {
			fmt.Fprint(resp, "    Average: ")
			writeFloatTime(resp, sum/float64(count))
			fmt.Fprint(resp, "\n")
			fmt.Fprint(resp, "    Histogram: ")
			cummulative := uint64(0)
			for i := 0; i < len(vals) && i < len(bounds); i++ {
				v := vals[i]
				if v != 0 {
					cummulative += v
					writeIntTime(resp, bounds[i])
					fmt.Fprintf(resp, ": %.1f%%, ", 100*float64(cummulative)/float64(count))
				}
			}
			fmt.Fprint(resp, "\n")
		}
		fmt.Fprint(resp, "\n")
	}
}

func writeIntTime(w io.Writer, durationSec float64) {
	v, unit := normalize(durationSec)
	fmt.Fprintf(w, "%d%s", int(v), unit)
}

func writeFloatTime(w io.Writer, durationSec float64) {
	v, unit := normalize(durationSec)
	// Print only 3 digits out e.g. 1.23 ; 12.3 or 123
	if v < 10 {
		fmt.Fprintf(w, "%.2f%s", v, unit)
	} else if v < 100 {
		fmt.Fprintf(w, "%.1f%s", v, unit)
	} else {
		fmt.Fprintf(w, "%.0f%s", v, unit)
	}
}

func normalize(durationSec float64) (newValue float64, unit string) {
	if 1 <= durationSec {
		newValue = durationSec
		unit = "s"
	} else if 1e-3 <= durationSec {
		newValue = durationSec * 1e3
		unit = "ms"
	} else {
		newValue = durationSec * 1e6
		unit = "μs"
	}
	return
}
