package beats

import (
	"gelfmover/internal/metrics"
	"time"
)

// Gracefully stops module
func (mod *OutModule) Shutdown() (err error) {
	if mod == nil {
		return
	}
	mod.mu.Lock()
	defer mod.mu.Unlock()
	if mod.sink != nil {
		err = mod.sink.Close()
		mod.sink = nil
	}
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

	add("sent", mod.Metrics.Sent.Swap(0), "Events acknowledged by the beats server in the interval")
	add("send_errors", mod.Metrics.SendErrors.Swap(0), "Failed sends in the interval")
	add("redials", mod.Metrics.Redials.Swap(0), "Connections re-established after a failure in the interval")
	return
}
