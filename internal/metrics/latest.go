package metrics

// Every metric of the newest slice, ordered by namespace then name
func (registry *Registry) Latest() (results []Metric) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	if len(registry.slices) == 0 {
		return
	}
	newest := registry.slices[len(registry.slices)-1]

	results = make([]Metric, 0, len(newest.series))
	for _, metric := range newest.series {
		results = append(results, metric)
	}
	sortSeries(results)
	return
}

// Numeric view of a raw value. Unknown types read as 0.
func (value MetricValue) Float() (number float64) {
	switch raw := value.Raw.(type) {
	case uint64:
		number = float64(raw)
	case int64:
		number = float64(raw)
	case int:
		number = float64(raw)
	case uint32:
		number = float64(raw)
	case float64:
		number = raw
	case float32:
		number = float64(raw)
	}
	return
}
