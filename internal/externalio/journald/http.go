package journald

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"gelfmover/internal/global"
	"gelfmover/internal/receiver/dispatcher"
	"io"
	"net/http"
	"strconv"
	"time"
)

// Writes journald export format byte payload to the journald-remote HTTP endpoint
func (mod *OutModule) sendJournalExport(ctx context.Context, payload []byte) (err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, mod.url, bytes.NewReader(payload))
	if err != nil {
		err = dispatcher.NonRetryable(fmt.Errorf("failed request creation: %w", err))
		return
	}

	req.Header.Set("Content-Type", "application/vnd.fdo.journal") // journald export format
	req.Header.Del("Expect")                                      // Unsupported by journal remote server (will cause errors if set)

	resp, err := mod.sink.Do(req)
	if err != nil {
		mod.Metrics.SendErrors.Add(1)
		if errors.Is(err, context.DeadlineExceeded) {
			err = dispatcher.Retryable(fmt.Errorf("journal upload timed out: %w", context.DeadlineExceeded), 0)
			return
		}
		err = dispatcher.Retryable(fmt.Errorf("failed HTTP request: %w", err), 0)
		return
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		mod.Metrics.Sent.Add(1)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		mod.Metrics.SendErrors.Add(1)
		err = dispatcher.Retryable(fmt.Errorf("journal remote returned %d: %s", resp.StatusCode, bytes.TrimSpace(body)),
			retryAfter(resp.Header.Get("Retry-After")))
	default:
		mod.Metrics.Rejected.Add(1)
		err = dispatcher.NonRetryable(fmt.Errorf("journal remote rejected entry with %d: %s", resp.StatusCode, bytes.TrimSpace(body)))
	}
	return
}

// Seconds form of Retry-After only
func retryAfter(header string) (delay time.Duration) {
	seconds, err := strconv.Atoi(header)
	if err != nil || seconds < 0 {
		return
	}
	if int64(seconds) >= int64(global.MaxRetryAfter/time.Second) {
		delay = global.MaxRetryAfter
		return
	}
	delay = time.Duration(seconds) * time.Second
	return
}
