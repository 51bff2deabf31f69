package server

import (
	"gelfmover/internal/metrics"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromName(t *testing.T) {
	assert.Equal(t, "gelfmover_listener_datagrams",
		promName(metrics.Metric{Name: "datagrams", Namespace: []string{"Receiver", "Ingest", "Listener", "0"}}))
	assert.Equal(t, "gelfmover_chunk_store_bytes_held",
		promName(metrics.Metric{Name: "bytes-held", Namespace: []string{"Chunk-Store"}}))
	assert.Equal(t, "gelfmover_total",
		promName(metrics.Metric{Name: "total"}))
}

func TestRegistryCollector(t *testing.T) {
	latest := []metrics.Metric{
		{
			Name:        "datagrams",
			Description: "Datagrams received",
			Namespace:   []string{"Receiver", "Ingest", "Listener", "0"},
			Value:       metrics.MetricValue{Raw: uint64(42), Unit: "count", Interval: time.Second},
			Type:        metrics.Counter,
		},
		{
			Name:        "datagrams",
			Description: "Datagrams received",
			Namespace:   []string{"Receiver", "Ingest", "Listener", "1"},
			Value:       metrics.MetricValue{Raw: uint64(8), Unit: "count", Interval: time.Second},
			Type:        metrics.Counter,
		},
	}

	registry := prometheus.NewRegistry()
	require.NoError(t, registry.Register(newRegistryCollector(mockLatest(latest))))

	expected := `
# HELP gelfmover_listener_datagrams Datagrams received (count)
# TYPE gelfmover_listener_datagrams gauge
gelfmover_listener_datagrams{namespace="Receiver/Ingest/Listener/0"} 42
gelfmover_listener_datagrams{namespace="Receiver/Ingest/Listener/1"} 8
`
	assert.NoError(t, testutil.GatherAndCompare(registry, strings.NewReader(expected), "gelfmover_listener_datagrams"))
}

func TestRegistryCollector_Empty(t *testing.T) {
	registry := prometheus.NewRegistry()
	require.NoError(t, registry.Register(newRegistryCollector(nil)))

	families, err := registry.Gather()
	require.NoError(t, err)
	assert.Empty(t, families)
}
