package dispatcher

import (
	"errors"
	"fmt"
	"time"
)

var ErrClosed = errors.New("dispatcher is shut down")

// Sink failure carrying its retry classification
type SinkError struct {
	Retryable  bool
	RetryAfter time.Duration // minimum delay requested by the sink, if any
	Err        error
}

func (err *SinkError) Error() string {
	kind := "non-retryable"
	if err.Retryable {
		kind = "retryable"
	}
	if err.RetryAfter > 0 {
		return fmt.Sprintf("%s sink failure (retry after %s): %v", kind, err.RetryAfter, err.Err)
	}
	return fmt.Sprintf("%s sink failure: %v", kind, err.Err)
}

func (err *SinkError) Unwrap() error {
	return err.Err
}

// Marks err as transient. retryAfter of 0 leaves timing to the backoff policy.
func Retryable(err error, retryAfter time.Duration) error {
	return &SinkError{Retryable: true, RetryAfter: retryAfter, Err: err}
}

// Marks err as permanent for this event
func NonRetryable(err error) error {
	return &SinkError{Retryable: false, Err: err}
}

// Decides whether a failed call may be repeated.
// Timeouts and unclassified errors are transient.
func classify(err error) (retry bool, retryAfter time.Duration) {
	var sinkErr *SinkError
	if errors.As(err, &sinkErr) {
		retry = sinkErr.Retryable
		retryAfter = sinkErr.RetryAfter
		return
	}
	// Per-call timeouts (context.DeadlineExceeded) land here too
	retry = true
	return
}
