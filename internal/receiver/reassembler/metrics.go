package reassembler

import (
	"gelfmover/internal/metrics"
	"sync/atomic"
	"time"
)

type MetricStorage struct {
	Chunks     atomic.Uint64 // chunks offered to Ingest
	Assembled  atomic.Uint64 // complete payloads produced
	Violations atomic.Uint64 // chunks breaking framing rules
	Rejected   atomic.Uint64 // chunks refused for capacity
	SumWaitNs  atomic.Uint64 // first chunk to completion, summed
	MaxWaitNs  atomic.Uint64
}

func (instance *Instance) CollectMetrics(interval time.Duration) (collection []metrics.Metric) {
	assembled := instance.Metrics.Assembled.Swap(0)
	sumWait := instance.Metrics.SumWaitNs.Swap(0)
	maxWait := instance.Metrics.MaxWaitNs.Swap(0)

	var avgWait uint64
	if assembled > 0 {
		avgWait = sumWait / assembled
	}

	recordTime := time.Now()
	add := func(name string, raw uint64, unit string, t metrics.MetricType, description string) {
		collection = append(collection, metrics.Metric{
			Name:        name,
			Description: description,
			Namespace:   instance.Namespace,
			Type:        t,
			Timestamp:   recordTime,
			Value: metrics.MetricValue{
				Raw:      raw,
				Unit:     unit,
				Interval: interval,
			},
		})
	}

	add("chunks", instance.Metrics.Chunks.Swap(0), "count", metrics.Counter, "Chunks received in the interval")
	add("assembled", assembled, "count", metrics.Counter, "Messages reassembled in the interval")
	add("protocol_violations", instance.Metrics.Violations.Swap(0), "count", metrics.Counter, "Chunks rejected for invalid framing in the interval")
	add("rejected_capacity", instance.Metrics.Rejected.Swap(0), "count", metrics.Counter, "Chunks rejected because the chunk store was full in the interval")
	add("average_assembly_wait", avgWait, "ns", metrics.Summary, "Average time from first chunk to completion in the interval")
	add("max_assembly_wait", maxWait, "ns", metrics.Summary, "Longest time from first chunk to completion in the interval")
	return
}
