package reaper

import (
	"gelfmover/internal/receiver/chunkstore"
	"time"
)

type Instance struct {
	Namespace []string
	store     *chunkstore.Store
	interval  time.Duration
	deadline  time.Duration
	Metrics   MetricStorage
}
