package metrics

import (
	"sort"
	"strings"
	"time"
)

// Index of the first slice starting at or after at
func (registry *Registry) locate(at time.Time) (index int) {
	index = sort.Search(len(registry.slices), func(i int) bool {
		return !registry.slices[i].start.Before(at)
	})
	return
}

// Returns the slice start for now, creating the slice on first use
func (registry *Registry) NewTimeSlice(now time.Time, interval time.Duration) (start time.Time) {
	start = now
	if interval > 0 {
		start = now.Truncate(interval)
	}

	registry.mu.Lock()
	defer registry.mu.Unlock()

	index := registry.locate(start)
	if index < len(registry.slices) && registry.slices[index].start.Equal(start) {
		return
	}

	registry.slices = append(registry.slices, timeSlice{})
	copy(registry.slices[index+1:], registry.slices[index:])
	registry.slices[index] = timeSlice{
		start:  start,
		series: make(map[seriesKey]Metric),
	}
	return
}

// Records a batch into an existing slice. Unknown slices are ignored.
func (registry *Registry) Add(start time.Time, batch []Metric) {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	index := registry.locate(start)
	if index >= len(registry.slices) || !registry.slices[index].start.Equal(start) {
		return
	}
	series := registry.slices[index].series

	for _, metric := range batch {
		key := seriesKey{namespace: strings.Join(metric.Namespace, "/"), name: metric.Name}

		// Counters gathered more than once in a slice accumulate
		existing, present := series[key]
		if present && metric.Type == Counter {
			metric.Value.Raw = existing.Value.Float() + metric.Value.Float()
		}
		series[key] = metric
	}
}
