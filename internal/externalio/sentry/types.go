package sentry

import (
	"sync/atomic"
	"time"

	"github.com/valyala/fasthttp"
)

// Parsed client key
type DSN struct {
	Scheme    string
	Host      string // host[:port]
	Path      string // prefix before the project id, no trailing slash
	ProjectID string
	PublicKey string
	SecretKey string // legacy, optional
}

// Posts events to the store endpoint of one project
type Sink struct {
	Namespace []string
	dsn       DSN
	storeURL  string
	client    *fasthttp.Client
	timeout   time.Duration
	Metrics   MetricStorage
}

type MetricStorage struct {
	Requests        atomic.Uint64
	Accepted        atomic.Uint64
	Throttled       atomic.Uint64 // 429
	ServerErrors    atomic.Uint64 // 5xx
	Rejected        atomic.Uint64 // other non-2xx
	TransportErrors atomic.Uint64
}
