package server

import (
	"context"
	"gelfmover/internal/metrics"
	"time"
)

// Routes net/http and promhttp error output into the daemon log
type httpLogWriter struct {
	ctx context.Context
}

type Jerror struct {
	Msg string `json:"error"`
}

// Registry views the handlers query
type (
	DataSearcher func(name string, namespacePrefix []string, start, end time.Time) []metrics.Metric
	Discoverer   func(name, description string, namespacePrefix []string, unit string, metricType metrics.MetricType) []metrics.Metric
	LatestReader func() []metrics.Metric
)
