package server

import (
	"gelfmover/internal/global"
	"gelfmover/internal/metrics"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// Exposes the newest registry interval as Prometheus gauges.
// Interval counters are deltas, so every value is reported as a gauge.
type registryCollector struct {
	latest LatestReader
}

func newRegistryCollector(latest LatestReader) (collector *registryCollector) {
	collector = &registryCollector{latest: latest}
	return
}

// Unchecked collector: metric set depends on running instances
func (collector *registryCollector) Describe(chan<- *prometheus.Desc) {}

func (collector *registryCollector) Collect(ch chan<- prometheus.Metric) {
	if collector.latest == nil {
		return
	}
	for _, metric := range collector.latest() {
		desc := prometheus.NewDesc(
			promName(metric),
			metric.Description+" ("+metric.Value.Unit+")",
			[]string{"namespace"},
			nil,
		)
		value, err := prometheus.NewConstMetric(desc, prometheus.GaugeValue,
			metric.Value.Float(), strings.Join(metric.Namespace, "/"))
		if err != nil {
			ch <- prometheus.NewInvalidMetric(desc, err)
			continue
		}
		ch <- value
	}
}

// gelfmover_<component>_<name>, component being the last non-numeric namespace element
func promName(metric metrics.Metric) (name string) {
	var component string
	for i := len(metric.Namespace) - 1; i >= 0; i-- {
		part := metric.Namespace[i]
		if part != "" && strings.Trim(part, "0123456789") != "" {
			component = part
			break
		}
	}

	parts := []string{global.PrometheusPrefix}
	if component != "" {
		parts = append(parts, sanitize(strings.ToLower(component)))
	}
	parts = append(parts, sanitize(metric.Name))
	name = strings.Join(parts, "_")
	return
}

func sanitize(raw string) (clean string) {
	clean = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, raw)
	return
}
