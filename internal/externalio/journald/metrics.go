package journald

import (
	"gelfmover/internal/metrics"
	"time"
)

// Idle connections are released; in-flight uploads are bounded by the client timeout
func (mod *OutModule) Shutdown() (err error) {
	if mod == nil {
		return
	}
	mod.sink.CloseIdleConnections()
	return
}

func (mod *OutModule) CollectMetrics(interval time.Duration) (collection []metrics.Metric) {
	recordTime := time.Now()
	add := func(name string, raw uint64, description string) {
		collection = append(collection, metrics.Metric{
			Name:        name,
			Description: description,
			Namespace:   mod.Namespace,
			Type:        metrics.Counter,
			Timestamp:   recordTime,
			Value: metrics.MetricValue{
				Raw:      raw,
				Unit:     "count",
				Interval: interval,
			},
		})
	}

	add("sent", mod.Metrics.Sent.Swap(0), "Entries accepted by journal remote in the interval")
	add("rejected", mod.Metrics.Rejected.Swap(0), "Entries refused with a permanent status in the interval")
	add("send_errors", mod.Metrics.SendErrors.Swap(0), "Transport failures and retryable statuses in the interval")
	return
}
