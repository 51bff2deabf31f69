package kafka

import (
	"gelfmover/internal/metrics"
	"time"
)

func (mod *OutModule) CollectMetrics(interval time.Duration) (collection []metrics.Metric) {
	// Writer stats reset on every read
	stats := mod.writer.Stats()

	recordTime := time.Now()
	add := func(name string, raw uint64, unit string, description string) {
		collection = append(collection, metrics.Metric{
			Name:        name,
			Description: description,
			Namespace:   mod.Namespace,
			Type:        metrics.Counter,
			Timestamp:   recordTime,
			Value: metrics.MetricValue{
				Raw:      raw,
				Unit:     unit,
				Interval: interval,
			},
		})
	}

	add("sent", mod.Metrics.Sent.Swap(0), "count", "Events written to the topic in the interval")
	add("temporary_errors", mod.Metrics.Temporary.Swap(0), "count", "Retryable write failures in the interval")
	add("permanent_errors", mod.Metrics.Permanent.Swap(0), "count", "Writes rejected by the broker in the interval")
	add("encode_errors", mod.Metrics.EncodeErrors.Swap(0), "count", "Events that could not be encoded in the interval")
	add("bytes_written", uint64(max(stats.Bytes, 0)), "bytes", "Record bytes written by the producer in the interval")
	add("broker_writes", uint64(max(stats.Writes, 0)), "count", "Produce requests issued in the interval")
	return
}
