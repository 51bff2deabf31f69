package metrics

import (
	"gelfmover/internal/metrics"
	"gelfmover/internal/receiver/managers/in"
	"gelfmover/internal/receiver/managers/proc"
	"time"
)

// Any pipeline component reporting interval metrics
type Collector interface {
	CollectMetrics(interval time.Duration) []metrics.Metric
}

// Pointers to everything the gatherer polls. Nil entries are skipped.
type Managers struct {
	Input  *in.InstanceManager
	Proc   *proc.InstanceManager
	Shared []Collector // single-instance stages: store, reassembler, reaper, dispatcher, sink
}

type Gatherer struct {
	Interval  time.Duration     // Polling interval to gather metrics at
	Retention time.Duration     // Maximum time to maintain metrics for
	Registry  *metrics.Registry // Storage for metric data
	Mgrs      Managers          // Has pointers to all the managers
}
