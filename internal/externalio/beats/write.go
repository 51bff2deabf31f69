package beats

import (
	"context"
	"fmt"
	"gelfmover/internal/global"
	"gelfmover/internal/logctx"
	"gelfmover/internal/receiver/dispatcher"
	"gelfmover/internal/receiver/translator"
	"strconv"
	"time"
)

// Writes one event to the configured beats server.
// Every failure is retryable; the connection is re-dialled on the next call.
func (mod *OutModule) Send(ctx context.Context, eventID string, event translator.Event) (err error) {
	if mod == nil {
		return
	}
	err = ctx.Err()
	if err != nil {
		return
	}

	events := []interface{}{beatFields(eventID, event)}

	mod.mu.Lock()
	defer mod.mu.Unlock()

	if mod.sink == nil {
		mod.sink, err = mod.dial()
		if err != nil {
			mod.Metrics.SendErrors.Add(1)
			err = dispatcher.Retryable(err, 0)
			return
		}
		mod.Metrics.Redials.Add(1)
		logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog,
			"Reconnected to beats server %s\n", mod.endpoint)
	}

	_, err = mod.sink.Send(events)
	if err != nil {
		mod.Metrics.SendErrors.Add(1)
		mod.sink.Close()
		mod.sink = nil
		err = dispatcher.Retryable(fmt.Errorf("failed sending event to beats server: %w", err), 0)
		return
	}
	mod.Metrics.Sent.Add(1)
	return
}

// Maps an event onto ECS-style beat fields
func beatFields(eventID string, event translator.Event) (fields map[string]interface{}) {
	fields = map[string]interface{}{
		// Minimum required fields
		"@timestamp": eventTime(event.Timestamp.String()),
		"message":    event.Message,

		// Common fields
		"host": map[string]interface{}{
			"name":     event.ServerName,
			"hostname": event.ServerName,
		},
		"agent": map[string]interface{}{
			"name": event.ServerName, // Treated as remote host name for some parsers
			// Meta fields identifying the forwarding daemon itself
			"program": global.ProgName,
			"version": global.ProgVersion,
			"type":    "filebeat",
			"pid":     global.PID,
			"host":    global.Hostname,
		},
		"event": map[string]interface{}{
			"id":       eventID,
			"provider": event.Logger,
		},
		"log": map[string]interface{}{
			"level":  event.Level,
			"logger": event.Logger,
		},
	}
	if len(event.Tags) > 0 {
		fields["labels"] = event.Tags
	}
	if len(event.Extra) > 0 {
		fields["gelf"] = event.Extra
	}
	return
}

// Fractional unix seconds to time, falling back to now for unparsable text
func eventTime(seconds string) (stamp time.Time) {
	value, err := strconv.ParseFloat(seconds, 64)
	if err != nil {
		stamp = time.Now().UTC()
		return
	}
	whole := int64(value)
	stamp = time.Unix(whole, int64((value-float64(whole))*float64(time.Second))).UTC()
	return
}
