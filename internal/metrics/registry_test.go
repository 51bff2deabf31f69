package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixtureBase = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func counter(ns []string, name string, raw uint64, at time.Time) Metric {
	return Metric{
		Name:        name,
		Description: name + " in the interval",
		Namespace:   ns,
		Type:        Counter,
		Timestamp:   at,
		Value:       MetricValue{Raw: raw, Unit: "count", Interval: time.Minute},
	}
}

func gauge(ns []string, name string, raw uint64, at time.Time) Metric {
	metric := counter(ns, name, raw, at)
	metric.Type = Gauge
	metric.Description = "current " + name
	return metric
}

// Three one-minute slices with seven metrics in total
func setupRegistry(t *testing.T) (registry *Registry, slices [3]time.Time) {
	t.Helper()
	registry = New()

	listener := []string{"Receiver", "Listener"}
	for i := range slices {
		slices[i] = registry.NewTimeSlice(fixtureBase.Add(time.Duration(i)*time.Minute+15*time.Second), time.Minute)
	}

	registry.Add(slices[0], []Metric{
		counter(listener, "datagrams", 10, slices[0]),
		counter([]string{"Receiver", "Processor"}, "datagrams", 4, slices[0]),
		{
			Name:        "call_latency",
			Description: "mean sink call time",
			Namespace:   []string{"Receiver", "Dispatcher"},
			Type:        Summary,
			Timestamp:   slices[0],
			Value:       MetricValue{Raw: 12.5, Unit: "ms", Interval: time.Minute},
		},
	})
	registry.Add(slices[1], []Metric{
		counter(listener, "datagrams", 7, slices[1]),
		gauge([]string{"Receiver", "Queue"}, "depth", 3, slices[1]),
	})
	registry.Add(slices[2], []Metric{
		counter(listener, "datagrams", 1, slices[2]),
		gauge([]string{"Receiver", "ChunkStore"}, "incomplete", 2, slices[2]),
	})
	return
}

func TestNewTimeSlice(t *testing.T) {
	registry := New()

	first := registry.NewTimeSlice(fixtureBase.Add(90*time.Second), time.Minute)
	assert.Equal(t, fixtureBase.Add(time.Minute), first)

	again := registry.NewTimeSlice(fixtureBase.Add(100*time.Second), time.Minute)
	assert.Equal(t, first, again)
	assert.Len(t, registry.slices, 1)

	// Earlier slice created later still sorts first
	earlier := registry.NewTimeSlice(fixtureBase, time.Minute)
	require.Len(t, registry.slices, 2)
	assert.Equal(t, earlier, registry.slices[0].start)

	unrounded := registry.NewTimeSlice(fixtureBase.Add(time.Second), 0)
	assert.Equal(t, fixtureBase.Add(time.Second), unrounded)
	assert.Len(t, registry.slices, 3)
}

func TestAdd_UnknownSliceIgnored(t *testing.T) {
	registry := New()
	registry.Add(fixtureBase, []Metric{counter([]string{"Receiver"}, "datagrams", 1, fixtureBase)})
	assert.Empty(t, registry.Search("", nil, time.Time{}, time.Time{}))
}

func TestAdd_AccumulatesCounters(t *testing.T) {
	registry := New()
	slice := registry.NewTimeSlice(fixtureBase, time.Minute)
	ns := []string{"Receiver", "Dispatcher"}

	registry.Add(slice, []Metric{counter(ns, "delivered", 3, slice), gauge(ns, "in_flight", 9, slice)})
	registry.Add(slice, []Metric{counter(ns, "delivered", 4, slice), gauge(ns, "in_flight", 2, slice)})

	latest := registry.Latest()
	require.Len(t, latest, 2)
	assert.Equal(t, "delivered", latest[0].Name)
	assert.Equal(t, float64(7), latest[0].Value.Float())
	assert.Equal(t, "in_flight", latest[1].Name)
	assert.Equal(t, float64(2), latest[1].Value.Float())
}

func TestSearch(t *testing.T) {
	registry, slices := setupRegistry(t)

	tests := []struct {
		name       string
		metricName string
		prefix     []string
		start, end time.Time
		want       int
	}{
		{name: "everything", want: 7},
		{name: "name is exact", metricName: "data", want: 0},
		{name: "name across namespaces", metricName: "datagrams", want: 4},
		{name: "name under listener", metricName: "datagrams", prefix: []string{"Receiver", "Listener"}, want: 3},
		{name: "prefix elements match whole", prefix: []string{"Receiver", "List"}, want: 0},
		{name: "window", start: slices[1], end: slices[2], want: 4},
		{name: "single slice", metricName: "datagrams", prefix: []string{"Receiver", "Listener"}, start: slices[2], end: slices[2], want: 1},
		{name: "open ended start", end: slices[0], want: 3},
		{name: "window after data", start: slices[2].Add(time.Hour), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := registry.Search(tt.metricName, tt.prefix, tt.start, tt.end)
			assert.Len(t, results, tt.want)
		})
	}
}

func TestSearch_OldestFirst(t *testing.T) {
	registry, slices := setupRegistry(t)

	results := registry.Search("datagrams", []string{"Receiver", "Listener"}, time.Time{}, time.Time{})
	require.Len(t, results, 3)
	for i, metric := range results {
		assert.Equal(t, slices[i], metric.Timestamp)
	}
	assert.Equal(t, float64(10), results[0].Value.Float())
}

func TestDiscover(t *testing.T) {
	registry, _ := setupRegistry(t)

	tests := []struct {
		name        string
		metricName  string
		description string
		prefix      []string
		unit        string
		metricType  MetricType
		want        int
	}{
		{name: "all series", want: 5},
		{name: "by unit", unit: "ms", want: 1},
		{name: "counters", metricType: Counter, want: 2},
		{name: "name substring", metricName: "data", want: 2},
		{name: "description substring", description: "current", want: 2},
		{name: "namespace", prefix: []string{"Receiver", "Listener"}, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := registry.Discover(tt.metricName, tt.description, tt.prefix, tt.unit, tt.metricType)
			assert.Len(t, results, tt.want)
			for _, metric := range results {
				assert.Nil(t, metric.Value.Raw)
				assert.True(t, metric.Timestamp.IsZero())
			}
		})
	}

	ordered := registry.Discover("", "", nil, "", "")
	names := make([]string, 0, len(ordered))
	for _, metric := range ordered {
		names = append(names, metric.Name)
	}
	assert.Equal(t, []string{"call_latency", "datagrams", "datagrams", "depth", "incomplete"}, names)
	assert.Equal(t, []string{"Receiver", "Listener"}, ordered[1].Namespace)
}

func TestPrune(t *testing.T) {
	registry, slices := setupRegistry(t)

	// Second slice is exactly at the limit and stays
	registry.Prune(slices[2].Add(30*time.Second), 90*time.Second)

	results := registry.Search("", nil, time.Time{}, time.Time{})
	assert.Len(t, results, 4)
	for _, metric := range results {
		assert.False(t, metric.Timestamp.Before(slices[1]))
	}

	registry.Prune(slices[2].Add(time.Hour), time.Minute)
	assert.Empty(t, registry.Latest())
	assert.Empty(t, registry.slices)
}

func TestLatest(t *testing.T) {
	registry, slices := setupRegistry(t)

	latest := registry.Latest()
	require.Len(t, latest, 2)
	assert.Equal(t, "incomplete", latest[0].Name)
	assert.Equal(t, "datagrams", latest[1].Name)
	for _, metric := range latest {
		assert.Equal(t, slices[2], metric.Timestamp)
	}

	assert.Empty(t, New().Latest())
}

func TestMetricValue_Float(t *testing.T) {
	tests := []struct {
		raw  interface{}
		want float64
	}{
		{uint64(5), 5},
		{int64(-3), -3},
		{int(7), 7},
		{float64(1.5), 1.5},
		{"text", 0},
		{nil, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MetricValue{Raw: tt.raw}.Float(), "raw %v", tt.raw)
	}
}

func TestConvert(t *testing.T) {
	in := Metric{
		Name:        "fragments_buffered",
		Description: "fragments held for incomplete messages",
		Namespace:   []string{"Receiver", "ChunkStore"},
		Type:        Gauge,
		Timestamp:   time.Date(2001, time.January, 1, 1, 1, 1, 1, time.UTC),
		Value:       MetricValue{Raw: uint64(45), Unit: "count", Interval: time.Second},
	}

	out := in.Convert()
	assert.Equal(t, JMetric{
		Name:        "fragments_buffered",
		Description: "fragments held for incomplete messages",
		Namespace:   "Receiver/ChunkStore",
		Type:        "gauge",
		Timestamp:   "2001-01-01T01:01:01.000000001Z",
		Value:       JMetricValue{Raw: "45", Unit: "count", Interval: "1s"},
	}, out)

	assert.Equal(t, "", (Metric{}).Convert().Namespace)
}

func TestMetricValue_String(t *testing.T) {
	tests := []struct {
		raw  interface{}
		want string
	}{
		{uint64(18446744073709551615), "18446744073709551615"},
		{int64(-4), "-4"},
		{3, "3"},
		{0.25, "0.25"},
		{float64(7), "7"},
		{float32(1.5), "1.5"},
		{nil, ""},
		{"ok", "ok"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MetricValue{Raw: tt.raw}.String(), "raw %v", tt.raw)
	}
}
