package mpmc

import (
	"gelfmover/internal/metrics"
	"sync/atomic"
	"time"
)

type MetricStorage struct {
	Depth atomic.Uint64 // Current items in queue

	PushSuccess    atomic.Uint64
	PushFull       atomic.Uint64 // rejected because the ring was full
	PushCASRetries atomic.Uint64

	PopSuccess    atomic.Uint64
	PopCASRetries atomic.Uint64
}

func (queue *Queue[T]) CollectMetrics(interval time.Duration) (collection []metrics.Metric) {
	recordTime := time.Now()

	add := func(name string, raw uint64, unit string, t metrics.MetricType, description string) {
		collection = append(collection, metrics.Metric{
			Name:        name,
			Description: description,
			Namespace:   queue.Namespace,
			Type:        t,
			Timestamp:   recordTime,
			Value: metrics.MetricValue{
				Raw:      raw,
				Unit:     unit,
				Interval: interval,
			},
		})
	}

	add("depth", queue.Metrics.Depth.Load(), "count", metrics.Gauge, "Current number of items in the queue")
	add("capacity", uint64(queue.Size), "count", metrics.Gauge, "Maximum number of items the queue holds")
	add("push_success", queue.Metrics.PushSuccess.Swap(0), "count", metrics.Counter, "Items accepted in the interval")
	add("push_full", queue.Metrics.PushFull.Swap(0), "count", metrics.Counter, "Items rejected because the queue was full in the interval")
	add("push_cas_retries", queue.Metrics.PushCASRetries.Swap(0), "count", metrics.Counter, "Sum of retries to push in the interval")
	add("pop_success", queue.Metrics.PopSuccess.Swap(0), "count", metrics.Counter, "Items consumed in the interval")
	add("pop_cas_retries", queue.Metrics.PopCASRetries.Swap(0), "count", metrics.Counter, "Sum of retries to pop in the interval")
	return
}
