package processor

import (
	"gelfmover/internal/metrics"
	"sync/atomic"
	"time"
)

type MetricStorage struct {
	Chunks             atomic.Uint64 // chunked datagrams seen
	Violations         atomic.Uint64 // chunks that failed header parsing
	Decoded            atomic.Uint64 // complete messages decoded
	DecodeCompression  atomic.Uint64
	DecodeMalformed    atomic.Uint64
	DecodeMissingField atomic.Uint64
	SubmitErrors       atomic.Uint64
	SumNs              atomic.Uint64 // sum of elapsed ns for all ops
	MaxNs              atomic.Uint64 // max observed op duration
}

func (instance *Instance) CollectMetrics(interval time.Duration) (collection []metrics.Metric) {
	// Read and clear
	decoded := instance.Metrics.Decoded.Swap(0)
	compression := instance.Metrics.DecodeCompression.Swap(0)
	malformed := instance.Metrics.DecodeMalformed.Swap(0)
	missing := instance.Metrics.DecodeMissingField.Swap(0)
	sumNs := instance.Metrics.SumNs.Swap(0)

	// Record read time
	recordTime := time.Now()

	var avgNs uint64
	if handled := decoded + compression + malformed + missing; handled > 0 {
		avgNs = sumNs / handled
	}

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

	add("chunks_total", instance.Metrics.Chunks.Swap(0), "count", metrics.Counter, "Chunked datagrams handled in the interval")
	add("chunk_violations", instance.Metrics.Violations.Swap(0), "count", metrics.Counter, "Chunks with invalid headers in the interval")
	add("decoded_total", decoded, "count", metrics.Counter, "Messages decoded in the interval")
	add("decode_errors_compression", compression, "count", metrics.Counter, "Messages that failed decompression in the interval")
	add("decode_errors_malformed", malformed, "count", metrics.Counter, "Messages with malformed JSON or field types in the interval")
	add("decode_errors_missing_field", missing, "count", metrics.Counter, "Messages missing a mandatory field in the interval")
	add("submit_errors", instance.Metrics.SubmitErrors.Swap(0), "count", metrics.Counter, "Events the dispatcher refused in the interval")
	add("elapsed_time_avg_ns", avgNs, "ns", metrics.Summary, "Average time spent processing datagrams in the interval")
	add("elapsed_time_max_ns", instance.Metrics.MaxNs.Swap(0), "ns", metrics.Summary, "Maximum (seen) time spent processing datagrams in the interval")
	return
}
