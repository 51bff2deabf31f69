package metrics

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Export form of the metric
func (inMetric Metric) Convert() (outMetric JMetric) {
	outMetric = JMetric{
		Name:        inMetric.Name,
		Description: inMetric.Description,
		Namespace:   strings.Join(inMetric.Namespace, "/"),
		Type:        string(inMetric.Type),
		Timestamp:   inMetric.Timestamp.Format(time.RFC3339Nano),
		Value: JMetricValue{
			Raw:      inMetric.Value.String(),
			Unit:     inMetric.Value.Unit,
			Interval: inMetric.Value.Interval.String(),
		},
	}
	return
}

// Raw value as text. Floats use the shortest exact form.
func (value MetricValue) String() (text string) {
	switch raw := value.Raw.(type) {
	case nil:
		text = ""
	case uint64:
		text = strconv.FormatUint(raw, 10)
	case int64:
		text = strconv.FormatInt(raw, 10)
	case int:
		text = strconv.Itoa(raw)
	case float64:
		text = strconv.FormatFloat(raw, 'f', -1, 64)
	case float32:
		text = strconv.FormatFloat(float64(raw), 'f', -1, 32)
	default:
		text = fmt.Sprintf("%v", raw)
	}
	return
}
