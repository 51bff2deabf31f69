package server

import (
	"context"
	"gelfmover/internal/global"
	"gelfmover/internal/metrics"
	"net/http"
	"strings"
)

// Namespace path segment after prefix; nil when absent
func requestNamespace(path, prefix string) (namespace []string) {
	raw := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	if raw == "" {
		return
	}
	namespace = strings.Split(raw, "/")
	return
}

// Empty input is valid and means any type
func parseMetricType(raw string) (metricType metrics.MetricType, valid bool) {
	metricType = metrics.MetricType(strings.ToLower(raw))
	switch metricType {
	case "", metrics.Counter, metrics.Gauge, metrics.Summary:
		valid = true
	}
	return
}

// Writes results in export form, or a JSON error when there are none
func writeResults(ctx context.Context, serverResponder http.ResponseWriter, rawResults []metrics.Metric) {
	if len(rawResults) == 0 {
		jResp(ctx, serverResponder, Jerror{Msg: "Search returned no results"})
		return
	}

	results := make([]metrics.JMetric, 0, len(rawResults))
	for _, rawResult := range rawResults {
		results = append(results, rawResult.Convert())
	}
	jResp(ctx, serverResponder, results)
}

// Lists available series without values
func handleDiscovery(baseCtx context.Context, discover Discoverer, serverResponder http.ResponseWriter, clientRequest *http.Request) {
	reqType, valid := parseMetricType(clientRequest.FormValue("type"))
	if !valid {
		serverResponder.WriteHeader(http.StatusBadRequest)
		return
	}

	rawResults := discover(
		clientRequest.FormValue("name"),
		clientRequest.FormValue("description"),
		requestNamespace(clientRequest.URL.Path, global.DiscoveryPath),
		clientRequest.FormValue("unit"),
		reqType,
	)
	writeResults(baseCtx, serverResponder, rawResults)
}
