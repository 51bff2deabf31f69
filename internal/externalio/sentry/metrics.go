package sentry

import (
	"gelfmover/internal/metrics"
	"time"
)

func (sink *Sink) CollectMetrics(interval time.Duration) (collection []metrics.Metric) {
	recordTime := time.Now()
	add := func(name string, raw uint64, description string) {
		collection = append(collection, metrics.Metric{
			Name:        name,
			Description: description,
			Namespace:   sink.Namespace,
			Type:        metrics.Counter,
			Timestamp:   recordTime,
			Value: metrics.MetricValue{
				Raw:      raw,
				Unit:     "count",
				Interval: interval,
			},
		})
	}

	add("requests", sink.Metrics.Requests.Swap(0), "Store requests sent in the interval")
	add("accepted", sink.Metrics.Accepted.Swap(0), "Events accepted with a 2xx status in the interval")
	add("throttled", sink.Metrics.Throttled.Swap(0), "Requests rate limited by the server in the interval")
	add("server_errors", sink.Metrics.ServerErrors.Swap(0), "Requests failed with a 5xx status in the interval")
	add("rejected", sink.Metrics.Rejected.Swap(0), "Events refused with a non-retryable status in the interval")
	add("transport_errors", sink.Metrics.TransportErrors.Swap(0), "Requests failed before a response in the interval")
	return
}
