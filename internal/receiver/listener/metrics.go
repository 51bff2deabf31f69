package listener

import (
	"gelfmover/internal/metrics"
	"sync/atomic"
	"time"
)

type MetricStorage struct {
	BusyNs     atomic.Uint64 // sum of ns spent doing anything
	Datagrams  atomic.Uint64 // datagrams read from the socket
	Bytes      atomic.Uint64 // datagram bytes read
	Violations atomic.Uint64 // datagrams failing framing checks
	QueueFull  atomic.Uint64 // valid datagrams dropped because the queue was full
	Forwarded  atomic.Uint64 // datagrams handed to processors
	SumNs      atomic.Uint64 // sum of elapsed ns for all ops
	MaxNs      atomic.Uint64 // max observed op duration
}

func (instance *Instance) CollectMetrics(interval time.Duration) (collection []metrics.Metric) {
	// Read and clear
	busyNs := instance.Metrics.BusyNs.Swap(0)
	forwarded := instance.Metrics.Forwarded.Swap(0)
	queueFull := instance.Metrics.QueueFull.Swap(0)
	sumNs := instance.Metrics.SumNs.Swap(0)

	// Record read time
	recordTime := time.Now()

	// Percent worker was busy
	var busyPct float64
	if interval > 0 {
		busyPct = (float64(busyNs) / float64(interval.Nanoseconds())) * 100
	}

	var avgNs uint64
	if validated := forwarded + queueFull; validated > 0 {
		avgNs = sumNs / validated
	}

	add := func(name string, raw any, unit string, t metrics.MetricType, description string) {
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

	add("busy_time_percent", busyPct, "%", metrics.Summary, "Total time spent doing anything in the interval")
	add("datagrams_total", instance.Metrics.Datagrams.Swap(0), "count", metrics.Counter, "Datagrams read from the socket in the interval")
	add("bytes_total", instance.Metrics.Bytes.Swap(0), "bytes", metrics.Counter, "Datagram bytes read in the interval")
	add("protocol_violations", instance.Metrics.Violations.Swap(0), "count", metrics.Counter, "Datagrams failing chunk framing checks in the interval")
	add("dropped_queue_full", queueFull, "count", metrics.Counter, "Valid datagrams dropped because the processor queue was full in the interval")
	add("forwarded_total", forwarded, "count", metrics.Counter, "Datagrams queued for processing in the interval")
	add("elapsed_time_avg_ns", avgNs, "ns", metrics.Summary, "Average time spent validating datagrams in the interval")
	add("elapsed_time_max_ns", instance.Metrics.MaxNs.Swap(0), "ns", metrics.Summary, "Maximum (seen) time spent validating datagrams in the interval")
	return
}
