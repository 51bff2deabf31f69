package chunkstore

import (
	"gelfmover/internal/metrics"
	"sync/atomic"
	"time"
)

type MetricStorage struct {
	Created       atomic.Uint64 // fragment sets opened (including single chunk messages)
	Completed     atomic.Uint64
	Expired       atomic.Uint64 // removed by Sweep
	Duplicates    atomic.Uint64 // chunks overwriting an index already present
	TotalMismatch atomic.Uint64
	RejectedFull  atomic.Uint64
}

func (store *Store) CollectMetrics(interval time.Duration) (collection []metrics.Metric) {
	recordTime := time.Now()

	add := func(name string, raw uint64, unit string, t metrics.MetricType, description string) {
		collection = append(collection, metrics.Metric{
			Name:        name,
			Description: description,
			Namespace:   store.Namespace,
			Type:        t,
			Timestamp:   recordTime,
			Value: metrics.MetricValue{
				Raw:      raw,
				Unit:     unit,
				Interval: interval,
			},
		})
	}

	add("fragment_sets", uint64(max(store.sets.Load(), 0)), "count", metrics.Gauge, "Incomplete fragment sets currently buffered")
	add("buffered_bytes", uint64(max(store.bytes.Load(), 0)), "bytes", metrics.Gauge, "Chunk payload bytes currently buffered")
	add("created", store.Metrics.Created.Swap(0), "count", metrics.Counter, "Fragment sets started in the interval")
	add("completed", store.Metrics.Completed.Swap(0), "count", metrics.Counter, "Fragment sets completed in the interval")
	add("expired", store.Metrics.Expired.Swap(0), "count", metrics.Counter, "Incomplete fragment sets evicted after the completion deadline in the interval")
	add("duplicate_chunks", store.Metrics.Duplicates.Swap(0), "count", metrics.Counter, "Chunks that overwrote an already received index in the interval")
	add("total_mismatch", store.Metrics.TotalMismatch.Swap(0), "count", metrics.Counter, "Chunks rejected for conflicting chunk totals in the interval")
	add("rejected_full", store.Metrics.RejectedFull.Swap(0), "count", metrics.Counter, "Chunks rejected because the store was at its set or byte capacity in the interval")
	return
}
