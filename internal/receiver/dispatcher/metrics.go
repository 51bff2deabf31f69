package dispatcher

import (
	"gelfmover/internal/metrics"
	"sync/atomic"
	"time"
)

type MetricStorage struct {
	Submitted        atomic.Uint64
	Delivered        atomic.Uint64
	Retries          atomic.Uint64 // transitions into Retrying
	DroppedOverflow  atomic.Uint64
	DroppedRejected  atomic.Uint64
	DroppedExhausted atomic.Uint64
	DroppedShutdown  atomic.Uint64
	SumCallNs        atomic.Uint64 // sink call latency including rate limit wait
	MaxCallNs        atomic.Uint64
}

func (dispatcher *Dispatcher) CollectMetrics(interval time.Duration) (collection []metrics.Metric) {
	delivered := dispatcher.Metrics.Delivered.Swap(0)
	retries := dispatcher.Metrics.Retries.Swap(0)
	dropOverflow := dispatcher.Metrics.DroppedOverflow.Swap(0)
	dropRejected := dispatcher.Metrics.DroppedRejected.Swap(0)
	dropExhausted := dispatcher.Metrics.DroppedExhausted.Swap(0)
	sumCall := dispatcher.Metrics.SumCallNs.Swap(0)

	// Every attempt ends in exactly one of these
	calls := delivered + retries + dropRejected + dropExhausted
	var avgCall uint64
	if calls > 0 {
		avgCall = sumCall / calls
	}

	recordTime := time.Now()
	add := func(name string, raw uint64, unit string, t metrics.MetricType, description string) {
		collection = append(collection, metrics.Metric{
			Name:        name,
			Description: description,
			Namespace:   dispatcher.Namespace,
			Type:        t,
			Timestamp:   recordTime,
			Value: metrics.MetricValue{
				Raw:      raw,
				Unit:     unit,
				Interval: interval,
			},
		})
	}

	add("depth", uint64(dispatcher.Depth()), "count", metrics.Gauge, "Requests queued for a first attempt or a retry")
	add("in_flight", dispatcher.inFlight.Load(), "count", metrics.Gauge, "Sink calls currently running")
	add("submitted", dispatcher.Metrics.Submitted.Swap(0), "count", metrics.Counter, "Events accepted for delivery in the interval")
	add("delivered", delivered, "count", metrics.Counter, "Events acknowledged by the sink in the interval")
	add("retries", retries, "count", metrics.Counter, "Retryable sink failures scheduled for another attempt in the interval")
	add("dropped_overflow", dropOverflow, "count", metrics.Counter, "Oldest queued requests evicted because the queue was full in the interval")
	add("dropped_rejected", dropRejected, "count", metrics.Counter, "Events the sink refused permanently in the interval")
	add("dropped_exhausted", dropExhausted, "count", metrics.Counter, "Events dropped after exhausting retry attempts in the interval")
	add("dropped_shutdown", dispatcher.Metrics.DroppedShutdown.Swap(0), "count", metrics.Counter, "Events discarded during shutdown in the interval")
	add("average_call_time", avgCall, "ns", metrics.Summary, "Average sink call duration in the interval")
	add("max_call_time", dispatcher.Metrics.MaxCallNs.Swap(0), "ns", metrics.Summary, "Longest sink call in the interval")
	return
}
