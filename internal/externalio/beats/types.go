package beats

import (
	"sync"
	"sync/atomic"
	"time"

	lumberjack "github.com/elastic/go-lumber/client/v2"
)

// Forwards events to a beats (lumberjack v2) server
type OutModule struct {
	Namespace []string
	endpoint  string
	timeout   time.Duration

	mu   sync.Mutex // serializes Send on the connection
	sink *lumberjack.SyncClient

	Metrics MetricStorage
}

type MetricStorage struct {
	Sent       atomic.Uint64
	SendErrors atomic.Uint64
	Redials    atomic.Uint64
}
