package metrics

import (
	"sort"
	"strings"
	"time"
)

// Element-wise prefix match. Empty query matches all.
func matchesNamespace(metricNS, queryNS []string) (matches bool) {
	if len(metricNS) < len(queryNS) {
		return
	}
	for i := range queryNS {
		if metricNS[i] != queryNS[i] {
			return
		}
	}
	matches = true
	return
}

// Orders by namespace then name
func sortSeries(collection []Metric) {
	sort.Slice(collection, func(i, j int) bool {
		ni := strings.Join(collection[i].Namespace, "/")
		nj := strings.Join(collection[j].Namespace, "/")
		if ni != nj {
			return ni < nj
		}
		return collection[i].Name < collection[j].Name
	})
}

// Returns metrics named name (all names when empty) under namespacePrefix.
// Zero start or end leaves that side of the window open.
// Results are oldest slice first.
func (registry *Registry) Search(name string, namespacePrefix []string, start, end time.Time) (results []Metric) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	first := 0
	if !start.IsZero() {
		first = registry.locate(start)
	}

	for _, slice := range registry.slices[first:] {
		if !end.IsZero() && slice.start.After(end) {
			break
		}

		var matched []Metric
		for key, metric := range slice.series {
			if name != "" && key.name != name {
				continue
			}
			if !matchesNamespace(metric.Namespace, namespacePrefix) {
				continue
			}
			matched = append(matched, metric)
		}
		sortSeries(matched)
		results = append(results, matched...)
	}
	return
}

// Lists distinct series matching the filters across all retained slices, without values.
// name and description match on substring; empty filters match everything.
func (registry *Registry) Discover(name, description string, namespacePrefix []string, unit string, metricType MetricType) (results []Metric) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	type identity struct {
		series     seriesKey
		metricType MetricType
		unit       string
	}
	seen := make(map[identity]struct{})

	for _, slice := range registry.slices {
		for key, metric := range slice.series {
			if name != "" && !strings.Contains(metric.Name, name) {
				continue
			}
			if description != "" && !strings.Contains(metric.Description, description) {
				continue
			}
			if unit != "" && metric.Value.Unit != unit {
				continue
			}
			if metricType != "" && metric.Type != metricType {
				continue
			}
			if !matchesNamespace(metric.Namespace, namespacePrefix) {
				continue
			}

			id := identity{series: key, metricType: metric.Type, unit: metric.Value.Unit}
			if _, exists := seen[id]; exists {
				continue
			}
			seen[id] = struct{}{}

			results = append(results, Metric{
				Name:        metric.Name,
				Description: metric.Description,
				Namespace:   metric.Namespace,
				Type:        metric.Type,
				Value:       MetricValue{Unit: metric.Value.Unit},
			})
		}
	}

	sortByNameThenNamespace(results)
	return
}

func sortByNameThenNamespace(collection []Metric) {
	sort.Slice(collection, func(i, j int) bool {
		if collection[i].Name != collection[j].Name {
			return collection[i].Name < collection[j].Name
		}
		return strings.Join(collection[i].Namespace, "/") < strings.Join(collection[j].Namespace, "/")
	})
}
