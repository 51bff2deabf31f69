package journald

import (
	"net/http"
	"sync/atomic"
)

// Forwards events to a systemd-journal-remote HTTP endpoint
type OutModule struct {
	Namespace []string
	sink      *http.Client
	url       string
	bootID    string

	Metrics MetricStorage
}

type MetricStorage struct {
	Sent       atomic.Uint64
	Rejected   atomic.Uint64
	SendErrors atomic.Uint64
}
