package server

import (
	"context"
	"gelfmover/internal/global"
	"gelfmover/internal/metrics"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupListener_Routes(t *testing.T) {
	latest := []metrics.Metric{{
		Name:        "delivered",
		Description: "Events accepted by the sink",
		Namespace:   []string{"Receiver", "Dispatcher"},
		Value:       metrics.MetricValue{Raw: uint64(17), Unit: "events", Interval: 10 * time.Second},
		Type:        metrics.Counter,
	}}

	server, err := SetupListener(context.Background(), 9111, mockDataSearcher(nil), mockDiscoverer(nil), mockLatest(latest))
	require.NoError(t, err)
	assert.Equal(t, global.HTTPListenAddr+":9111", server.Addr)

	ts := httptest.NewServer(server.Handler)
	defer ts.Close()

	routes := []struct {
		method   string
		path     string
		status   int
		contains string
	}{
		{http.MethodGet, "/", http.StatusOK, global.DataPath},
		{http.MethodPost, "/", http.StatusMethodNotAllowed, ""},
		{http.MethodGet, global.DiscoveryPath, http.StatusOK, "no results"},
		{http.MethodPatch, global.DiscoveryPath, http.StatusMethodNotAllowed, ""},
		{http.MethodPost, global.DataPath, http.StatusMethodNotAllowed, ""},
		{http.MethodGet, global.PrometheusPath, http.StatusOK, `gelfmover_dispatcher_delivered{namespace="Receiver/Dispatcher"} 17`},
		{http.MethodDelete, global.PrometheusPath, http.StatusMethodNotAllowed, ""},
		{http.MethodGet, "/sentry", http.StatusNotFound, ""},
	}

	for _, route := range routes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			req, err := http.NewRequest(route.method, ts.URL+route.path, nil)
			require.NoError(t, err)

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, route.status, resp.StatusCode)
			if route.contains == "" {
				return
			}
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Contains(t, string(body), route.contains)
		})
	}
}
