// Gathers instance metrics and saves to central registry
package metrics

import (
	"context"
	"gelfmover/internal/global"
	"gelfmover/internal/logctx"
	"gelfmover/internal/metrics"
	"runtime/debug"
	"time"
)

func New(mgrs Managers, interval time.Duration, maximumMetricAge time.Duration) (new *Gatherer) {
	new = &Gatherer{
		Registry:  metrics.New(),
		Mgrs:      mgrs,
		Interval:  interval,
		Retention: maximumMetricAge,
	}
	return
}

func (gatherer *Gatherer) Run(ctx context.Context) {
	ctx = logctx.AppendCtxTag(ctx, global.NSMetric)

	// Track last run times for each interval
	lastRun := time.Now()

	ticker := time.NewTicker(gatherer.Interval / 2) // Use polling interval half of desired record interval
	defer ticker.Stop()

	// Counter to track how many ticks have passed (for retention)
	var tickCount int

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if now.Sub(lastRun) >= gatherer.Interval {
				timeSlice := gatherer.Registry.NewTimeSlice(now, gatherer.Interval)

				lastRun = now
				gatherer.Collect(ctx, timeSlice, gatherer.Interval)
			}

			// Conduct old metric evaluations and cleanup
			tickCount++
			if tickCount >= 30 {
				gatherer.Registry.Prune(now, gatherer.Retention)
				tickCount = 0 // Reset the counter after cleanup
			}
		}
	}
}

// Read and calculate metrics for each pipeline component
func (gatherer *Gatherer) Collect(ctx context.Context, timeSlice time.Time, interval time.Duration) {
	// Record panics and continue on next interval
	defer func() {
		if fatalError := recover(); fatalError != nil {
			stack := debug.Stack()
			logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog,
				"panic in receiver metric collector thread: %v\n%s", fatalError, stack)
		}
	}()

	// Listener
	if gatherer.Mgrs.Input != nil {
		var collection []metrics.Metric
		gatherer.Mgrs.Input.Mu.Lock() // Ensure instances don't disappear mid-read
		for _, instance := range gatherer.Mgrs.Input.Instances {
			collection = append(collection, instance.Listener.CollectMetrics(interval)...)
		}
		gatherer.Mgrs.Input.Mu.Unlock()
		gatherer.Registry.Add(timeSlice, collection)
	}

	// Processor
	if gatherer.Mgrs.Proc != nil {
		// Queue
		gatherer.Registry.Add(timeSlice, gatherer.Mgrs.Proc.Inbox.CollectMetrics(interval))

		var collection []metrics.Metric
		gatherer.Mgrs.Proc.Mu.Lock()
		for _, instance := range gatherer.Mgrs.Proc.Instances {
			collection = append(collection, instance.Processor.CollectMetrics(interval)...)
		}
		gatherer.Mgrs.Proc.Mu.Unlock()
		gatherer.Registry.Add(timeSlice, collection)
	}

	for _, collector := range gatherer.Mgrs.Shared {
		if collector == nil {
			continue
		}
		gatherer.Registry.Add(timeSlice, collector.CollectMetrics(interval))
	}
}
