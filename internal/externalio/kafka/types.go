package kafka

import (
	"sync/atomic"

	kafka "github.com/segmentio/kafka-go"
)

// Producer writing one record per event, keyed by source host
type OutModule struct {
	Namespace []string
	writer    *kafka.Writer
	Metrics   MetricStorage
}

type MetricStorage struct {
	Sent         atomic.Uint64
	Temporary    atomic.Uint64 // failures classified retryable
	Permanent    atomic.Uint64
	EncodeErrors atomic.Uint64
}
