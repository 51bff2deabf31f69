package metrics

import (
	"sync"
	"time"
)

// Collection rounds kept oldest first
type Registry struct {
	mu     sync.RWMutex
	slices []timeSlice
}

type timeSlice struct {
	start  time.Time
	series map[seriesKey]Metric
}

type seriesKey struct {
	namespace string // joined with "/"
	name      string
}

type MetricType string

const (
	Counter MetricType = "counter" // events within the interval
	Gauge   MetricType = "gauge"   // point in time level
	Summary MetricType = "summary" // averaged over the interval
)

// One measurement taken during a collection round
type Metric struct {
	Name        string // e.g. fragments_buffered, queue_depth
	Description string
	Namespace   []string // e.g. "Receiver/Listener/0"
	Value       MetricValue
	Type        MetricType
	Timestamp   time.Time
}

type MetricValue struct {
	Raw      interface{}   // uint64, int64, float64
	Unit     string        // e.g. "ns", "bytes", "count"
	Interval time.Duration // collection interval the value covers
}

// Export form served by the query server
type JMetric struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Namespace   string       `json:"namespace"`
	Value       JMetricValue `json:"value"`
	Type        string       `json:"type"`
	Timestamp   string       `json:"timestamp"`
}

type JMetricValue struct {
	Raw      string `json:"raw"`
	Unit     string `json:"unit"`
	Interval string `json:"interval"`
}
