// Sentry sink posting translated events to a project's store endpoint
package sentry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"gelfmover/internal/global"
	"gelfmover/internal/logctx"
	"gelfmover/internal/receiver/dispatcher"
	"gelfmover/internal/receiver/translator"
	"strconv"
	"time"

	"github.com/valyala/fasthttp"
)

// Event body sent to the store endpoint
type storePayload struct {
	EventID string `json:"event_id"`
	translator.Event
}

var userAgent = global.ProgName + "/" + global.ProgVersion

func New(namespace []string, rawDSN string, timeout time.Duration) (new *Sink, err error) {
	dsn, err := ParseDSN(rawDSN)
	if err != nil {
		return
	}
	if timeout <= 0 {
		timeout = global.DefaultSinkTimeout
	}

	new = &Sink{
		Namespace: append(append([]string(nil), namespace...), global.NSSink),
		dsn:       dsn,
		storeURL:  dsn.StoreURL(),
		timeout:   timeout,
		client: &fasthttp.Client{
			Name:                userAgent,
			MaxConnsPerHost:     64,
			MaxIdleConnDuration: 30 * time.Second,
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
		},
	}
	return
}

// Posts one event. The deadline of ctx bounds the request.
func (sink *Sink) Send(ctx context.Context, eventID string, event translator.Event) (err error) {
	body, err := json.Marshal(storePayload{EventID: eventID, Event: event})
	if err != nil {
		err = dispatcher.NonRetryable(fmt.Errorf("failed to encode event: %w", err))
		return
	}

	err = ctx.Err()
	if err != nil {
		return
	}
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(sink.timeout)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(sink.storeURL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("X-Sentry-Auth", sink.dsn.AuthHeader(userAgent, time.Now().Unix()))
	req.SetBody(body)

	sink.Metrics.Requests.Add(1)
	err = sink.client.DoDeadline(req, resp, deadline)
	if err != nil {
		sink.Metrics.TransportErrors.Add(1)
		if errors.Is(err, fasthttp.ErrTimeout) {
			err = dispatcher.Retryable(fmt.Errorf("request to %s timed out: %w", sink.dsn.Host, context.DeadlineExceeded), 0)
			return
		}
		err = dispatcher.Retryable(fmt.Errorf("request to %s failed: %w", sink.dsn.Host, err), 0)
		return
	}

	err = sink.classify(resp)
	if err != nil {
		logctx.LogEvent(ctx, global.VerbosityData, global.WarnLog,
			"Sentry refused event %s: %v\n", eventID, err)
	}
	return
}

// Maps the response status onto a sink outcome
func (sink *Sink) classify(resp *fasthttp.Response) (err error) {
	status := resp.StatusCode()
	if status >= 200 && status < 300 {
		sink.Metrics.Accepted.Add(1)
		return
	}

	reason := fmt.Errorf("store endpoint returned %d: %s", status, truncate(resp.Body(), 256))
	switch {
	case status == fasthttp.StatusTooManyRequests:
		sink.Metrics.Throttled.Add(1)
		err = dispatcher.Retryable(reason, retryAfter(resp.Header.Peek(fasthttp.HeaderRetryAfter)))
	case status >= 500:
		sink.Metrics.ServerErrors.Add(1)
		err = dispatcher.Retryable(reason, retryAfter(resp.Header.Peek(fasthttp.HeaderRetryAfter)))
	default:
		sink.Metrics.Rejected.Add(1)
		err = dispatcher.NonRetryable(reason)
	}
	return
}

// Retry-After in delay-seconds form. HTTP dates and garbage yield 0.
func retryAfter(value []byte) (delay time.Duration) {
	if len(value) == 0 {
		return
	}
	seconds, err := strconv.ParseFloat(string(value), 64)
	if err != nil || !(seconds > 0) {
		return
	}
	if seconds >= global.MaxRetryAfter.Seconds() {
		delay = global.MaxRetryAfter
		return
	}
	delay = time.Duration(seconds * float64(time.Second))
	return
}

func truncate(body []byte, limit int) (text string) {
	if len(body) > limit {
		body = body[:limit]
	}
	text = string(body)
	return
}

// Releases pooled connections
func (sink *Sink) Shutdown() (err error) {
	if sink == nil {
		return
	}
	sink.client.CloseIdleConnections()
	return
}
