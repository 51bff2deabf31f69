package server

import (
	"gelfmover/internal/metrics"
	"time"
)

// Arguments the handlers passed to the registry
type query struct {
	name, description, unit string
	namespace               []string
	metricType              metrics.MetricType
	start, end              time.Time
}

func mockDiscoverer(results []metrics.Metric) Discoverer {
	return recordingDiscoverer(results, nil)
}

func recordingDiscoverer(results []metrics.Metric, seen *query) Discoverer {
	return func(name, desc string, ns []string, unit string, mt metrics.MetricType) []metrics.Metric {
		if seen != nil {
			*seen = query{name: name, description: desc, namespace: ns, unit: unit, metricType: mt}
		}
		return results
	}
}

func mockDataSearcher(results []metrics.Metric) DataSearcher {
	return recordingDataSearcher(results, nil)
}

func recordingDataSearcher(results []metrics.Metric, seen *query) DataSearcher {
	return func(name string, ns []string, start, end time.Time) []metrics.Metric {
		if seen != nil {
			*seen = query{name: name, namespace: ns, start: start, end: end}
		}
		return results
	}
}

func mockLatest(results []metrics.Metric) LatestReader {
	return func() []metrics.Metric {
		return results
	}
}
