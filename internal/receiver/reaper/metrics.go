package reaper

import (
	"gelfmover/internal/metrics"
	"sync/atomic"
	"time"
)

type MetricStorage struct {
	Sweeps   atomic.Uint64
	TimedOut atomic.Uint64 // incomplete messages discarded
}

func (instance *Instance) CollectMetrics(interval time.Duration) (collection []metrics.Metric) {
	recordTime := time.Now()
	collection = []metrics.Metric{
		{
			Name:        "sweeps",
			Description: "Chunk store sweeps run in the interval",
			Namespace:   instance.Namespace,
			Value: metrics.MetricValue{
				Raw:      instance.Metrics.Sweeps.Swap(0),
				Unit:     "count",
				Interval: interval,
			},
			Type:      metrics.Counter,
			Timestamp: recordTime,
		},
		{
			Name:        "incomplete_timeouts",
			Description: "Incomplete messages discarded after the completion deadline in the interval",
			Namespace:   instance.Namespace,
			Value: metrics.MetricValue{
				Raw:      instance.Metrics.TimedOut.Swap(0),
				Unit:     "count",
				Interval: interval,
			},
			Type:      metrics.Counter,
			Timestamp: recordTime,
		},
	}
	return
}
