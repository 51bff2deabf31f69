package chunkstore

import (
	"sync"
	"sync/atomic"
	"time"
)

// In-progress reconstruction state for one message id
type FragmentSet struct {
	ID         [8]byte
	Total      uint8
	chunks     [][]byte // indexed by sequence number
	received   []bool   // empty chunks are valid, so presence is tracked separately
	count      int      // distinct indices present
	size       int64    // sum of stored chunk lengths
	FirstSeen  time.Time
	LastUpdate time.Time
}

// Capacity bounds. Zero disables a bound.
type Limits struct {
	MaxSets  int   // concurrent fragment sets
	MaxBytes int64 // buffered chunk bytes across all sets
}

// Summary of a fragment set removed for exceeding the completion deadline
type Expired struct {
	ID       [8]byte
	Received int
	Total    uint8
	Age      time.Duration
}

type bucket struct {
	mu   sync.Mutex
	sets map[[8]byte]*FragmentSet
}

// Sharded by message id. All mutation of a set happens under its bucket lock.
type Store struct {
	Namespace []string
	buckets   []*bucket
	limits    Limits
	sets      atomic.Int64
	bytes     atomic.Int64
	Metrics   MetricStorage
}
