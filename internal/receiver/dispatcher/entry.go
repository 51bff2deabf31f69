// Forwards translated events to a sink with bounded concurrency, a bounded
// queue that evicts its oldest entry on overflow, and capped exponential retry
package dispatcher

import (
	"container/list"
	"context"
	"fmt"
	"gelfmover/internal/atomics"
	"gelfmover/internal/global"
	"gelfmover/internal/logctx"
	"gelfmover/internal/random"
	"gelfmover/internal/receiver/translator"
	"runtime/debug"
	"time"

	"golang.org/x/time/rate"
)

func New(namespace []string, sink Sink, config Config) (new *Dispatcher, err error) {
	switch {
	case sink == nil:
		err = fmt.Errorf("sink is required")
	case config.Workers < 1:
		err = fmt.Errorf("workers must be at least 1, got %d", config.Workers)
	case config.QueueSize < 1:
		err = fmt.Errorf("queue size must be at least 1, got %d", config.QueueSize)
	case config.MaxAttempts < 1:
		err = fmt.Errorf("max attempts must be at least 1, got %d", config.MaxAttempts)
	case config.Multiplier < 1:
		err = fmt.Errorf("backoff multiplier must be at least 1, got %g", config.Multiplier)
	case config.Jitter < 0 || config.Jitter >= 1:
		err = fmt.Errorf("jitter must be in [0,1), got %g", config.Jitter)
	case config.InitialBackoff < 0 || config.MaxBackoff < config.InitialBackoff:
		err = fmt.Errorf("backoff bounds invalid: initial %s, max %s", config.InitialBackoff, config.MaxBackoff)
	case config.CallTimeout <= 0:
		err = fmt.Errorf("call timeout must be positive, got %s", config.CallTimeout)
	case config.RateLimit < 0:
		err = fmt.Errorf("rate limit must not be negative, got %g", config.RateLimit)
	}
	if err != nil {
		return
	}

	new = &Dispatcher{
		Namespace: append(append([]string(nil), namespace...), global.NSDispatch),
		sink:      sink,
		config:    config,
		queue:     list.New(),
		changed:   make(chan struct{}),
		stop:      make(chan struct{}),
	}
	if config.RateLimit > 0 {
		new.limiter = rate.NewLimiter(rate.Limit(config.RateLimit), max(config.RateBurst, 1))
	}
	return
}

// Launches the worker pool. Sink calls inherit values (logger, tags) from ctx.
func (dispatcher *Dispatcher) Start(ctx context.Context) {
	dispatcher.callCtx, dispatcher.callCancel = context.WithCancel(context.WithoutCancel(ctx))

	for i := 0; i < dispatcher.config.Workers; i++ {
		workerCtx := logctx.AppendCtxTag(ctx, fmt.Sprintf("%s%d", global.NSWorker, i))
		dispatcher.wg.Add(1)
		go dispatcher.worker(workerCtx)
	}
}

// Queues an event for delivery. Never blocks; when the queue is full the
// oldest queued request is dropped to make room.
func (dispatcher *Dispatcher) Submit(ctx context.Context, event translator.Event) (eventID string, err error) {
	eventID, err = random.EventID()
	if err != nil {
		err = fmt.Errorf("failed to assign event id: %w", err)
		return
	}

	request := &Request{
		EventID: eventID,
		Event:   event,
		State:   Pending,
		Created: time.Now(),
	}

	dispatcher.mu.Lock()
	defer dispatcher.mu.Unlock()

	if dispatcher.closed {
		err = ErrClosed
		return
	}
	dispatcher.Metrics.Submitted.Add(1)
	dispatcher.enqueue(ctx, request)
	return
}

// Appends under lock, evicting from the front on overflow
func (dispatcher *Dispatcher) enqueue(ctx context.Context, request *Request) {
	for dispatcher.queue.Len() >= dispatcher.config.QueueSize {
		oldest := dispatcher.queue.Remove(dispatcher.queue.Front()).(*Request)
		dispatcher.drop(ctx, oldest, DropOverflow)
	}
	dispatcher.queue.PushBack(request)
	dispatcher.notify()
}

// Wakes every waiting worker. Caller holds mu.
func (dispatcher *Dispatcher) notify() {
	close(dispatcher.changed)
	dispatcher.changed = make(chan struct{})
}

func (dispatcher *Dispatcher) drop(ctx context.Context, request *Request, reason DropReason) {
	request.State = Dropped
	switch reason {
	case DropOverflow:
		dispatcher.Metrics.DroppedOverflow.Add(1)
	case DropRejected:
		dispatcher.Metrics.DroppedRejected.Add(1)
	case DropExhausted:
		dispatcher.Metrics.DroppedExhausted.Add(1)
	case DropShutdown:
		dispatcher.Metrics.DroppedShutdown.Add(1)
	}
	logctx.LogEvent(ctx, global.VerbosityProgress, global.WarnLog,
		"Dropped event %s (%s) after %d attempts: %v\n", request.EventID, reason, request.Attempts, request.LastErr)
}

// Takes the oldest request that is due. With nothing due, returns how long
// until the earliest retry (negative when none is scheduled) and a channel
// closed on the next queue change.
func (dispatcher *Dispatcher) next(now time.Time) (request *Request, wait time.Duration, changed <-chan struct{}, open bool) {
	dispatcher.mu.Lock()
	defer dispatcher.mu.Unlock()

	if dispatcher.closed {
		return
	}
	open = true

	wait = -1
	for elem := dispatcher.queue.Front(); elem != nil; elem = elem.Next() {
		candidate := elem.Value.(*Request)
		until := candidate.NextAttempt.Sub(now)
		if until <= 0 {
			dispatcher.queue.Remove(elem)
			candidate.State = InFlight
			dispatcher.inFlight.Add(1)
			request = candidate
			return
		}
		if wait < 0 || until < wait {
			wait = until
		}
	}
	changed = dispatcher.changed
	return
}

func (dispatcher *Dispatcher) worker(ctx context.Context) {
	defer dispatcher.wg.Done()

	for {
		request, wait, changed, open := dispatcher.next(time.Now())
		if !open {
			return
		}
		if request != nil {
			dispatcher.attempt(ctx, request)
			continue
		}

		// Nil channel blocks forever when no retry is scheduled
		var timer *time.Timer
		var due <-chan time.Time
		if wait >= 0 {
			timer = time.NewTimer(wait)
			due = timer.C
		}
		select {
		case <-dispatcher.stop:
		case <-changed:
		case <-due:
		}
		if timer != nil {
			timer.Stop()
		}
	}
}

// One sink call and the resulting state transition
func (dispatcher *Dispatcher) attempt(ctx context.Context, request *Request) {
	defer atomics.Subtract(&dispatcher.inFlight, 1)

	start := time.Now()
	err := dispatcher.call(ctx, request)
	latency := uint64(time.Since(start).Nanoseconds())
	dispatcher.Metrics.SumCallNs.Add(latency)
	atomics.StoreMax(&dispatcher.Metrics.MaxCallNs, latency)

	request.Attempts++
	request.LastErr = err

	if err == nil {
		request.State = Delivered
		dispatcher.Metrics.Delivered.Add(1)
		logctx.LogEvent(ctx, global.VerbosityData, global.InfoLog,
			"Delivered event %s after %d attempts\n", request.EventID, request.Attempts)
		return
	}

	// Calls cut short by the shutdown grace period are not retried
	if dispatcher.callCtx.Err() != nil {
		dispatcher.drop(ctx, request, DropShutdown)
		return
	}

	retry, retryAfter := classify(err)
	if !retry {
		dispatcher.drop(ctx, request, DropRejected)
		return
	}
	if request.Attempts >= dispatcher.config.MaxAttempts {
		dispatcher.drop(ctx, request, DropExhausted)
		return
	}

	delay := max(dispatcher.backoff(request.Attempts), retryAfter)
	request.State = Retrying
	request.NextAttempt = time.Now().Add(delay)
	dispatcher.Metrics.Retries.Add(1)

	logctx.LogEvent(ctx, global.VerbosityProgress, global.WarnLog,
		"Retrying event %s in %s (attempt %d): %v\n", request.EventID, delay.Round(time.Millisecond), request.Attempts, err)

	dispatcher.mu.Lock()
	defer dispatcher.mu.Unlock()
	if dispatcher.closed {
		dispatcher.drop(ctx, request, DropShutdown)
		return
	}
	dispatcher.enqueue(ctx, request)
}

// Invokes the sink under the rate limit and per-call timeout.
// A panicking sink counts as a permanent failure for that event.
func (dispatcher *Dispatcher) call(ctx context.Context, request *Request) (err error) {
	defer func() {
		if fatalError := recover(); fatalError != nil {
			logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog,
				"panic in sink call: %v\n%s", fatalError, debug.Stack())
			err = NonRetryable(fmt.Errorf("sink panic: %v", fatalError))
		}
	}()

	if dispatcher.limiter != nil {
		err = dispatcher.limiter.Wait(dispatcher.callCtx)
		if err != nil {
			return
		}
	}

	callCtx, cancel := context.WithTimeout(dispatcher.callCtx, dispatcher.config.CallTimeout)
	defer cancel()

	err = dispatcher.sink.Send(callCtx, request.EventID, request.Event)
	return
}

// Stops intake and discards queued requests, then waits up to grace for
// in-flight calls before cancelling them. Sinks that do not observe context
// cancellation (fasthttp calls run to their own deadline) get one more grace
// period; calls still running after that are left behind and recorded as
// shutdown drops when they return. Returns the number discarded.
func (dispatcher *Dispatcher) Shutdown(ctx context.Context, grace time.Duration) (discarded int) {
	dispatcher.mu.Lock()
	if dispatcher.closed {
		dispatcher.mu.Unlock()
		return
	}
	dispatcher.closed = true
	for elem := dispatcher.queue.Front(); elem != nil; elem = dispatcher.queue.Front() {
		dispatcher.drop(ctx, dispatcher.queue.Remove(elem).(*Request), DropShutdown)
		discarded++
	}
	close(dispatcher.stop)
	dispatcher.notify()
	dispatcher.mu.Unlock()

	finished := make(chan struct{})
	go func() {
		dispatcher.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(grace):
		logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
			"Abandoning %d in-flight sink calls after %s grace period\n", dispatcher.inFlight.Load(), grace)
		if dispatcher.callCancel != nil {
			dispatcher.callCancel()
		}
		select {
		case <-finished:
		case <-time.After(grace):
			logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
				"Leaving %d sink calls that ignored cancellation\n", dispatcher.inFlight.Load())
		}
	}
	if dispatcher.callCancel != nil {
		dispatcher.callCancel()
	}
	return
}

// Requests waiting for a first attempt or a retry
func (dispatcher *Dispatcher) Depth() (depth int) {
	dispatcher.mu.Lock()
	defer dispatcher.mu.Unlock()
	depth = dispatcher.queue.Len()
	return
}

func (dispatcher *Dispatcher) InFlight() (count uint64) {
	count = dispatcher.inFlight.Load()
	return
}
