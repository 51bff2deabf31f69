package dispatcher

import (
	"container/list"
	"context"
	"gelfmover/internal/receiver/translator"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// Delivers one event. Errors are classified with Retryable/NonRetryable;
// unclassified errors are retried.
type Sink interface {
	Send(ctx context.Context, eventID string, event translator.Event) error
}

type State int

const (
	Pending State = iota
	InFlight
	Retrying
	Delivered
	Dropped
)

// Why a request ended in Dropped
type DropReason string

const (
	DropOverflow  DropReason = "overflow"
	DropRejected  DropReason = "rejected"
	DropExhausted DropReason = "exhausted"
	DropShutdown  DropReason = "shutdown"
)

// Translated event plus retry bookkeeping
type Request struct {
	EventID     string
	Event       translator.Event
	State       State
	Attempts    int
	NextAttempt time.Time // zero until first retry is scheduled
	Created     time.Time
	LastErr     error
}

type Config struct {
	Workers        int           // concurrent sink calls
	QueueSize      int           // pending plus retrying requests held
	MaxAttempts    int           // sink calls per request, including the first
	InitialBackoff time.Duration // delay before the first retry
	MaxBackoff     time.Duration
	Multiplier     float64 // backoff growth per attempt
	Jitter         float64 // fraction of the delay randomly added or removed
	CallTimeout    time.Duration
	RateLimit      float64 // sink calls per second, 0 = unlimited
	RateBurst      int
}

type Dispatcher struct {
	Namespace []string
	sink      Sink
	config    Config
	limiter   *rate.Limiter

	mu      sync.Mutex
	queue   *list.List    // *Request in arrival order, retries re-enter at the back
	changed chan struct{} // closed and replaced whenever the queue changes
	closed  bool

	callCtx    context.Context // parent of every sink call, cancelled when the grace period ends
	callCancel context.CancelFunc
	stop       chan struct{}
	wg         sync.WaitGroup
	inFlight   atomic.Uint64

	Metrics MetricStorage
}
