// Kafka sink producing translated events to a topic
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"gelfmover/internal/global"
	"gelfmover/internal/logctx"
	"gelfmover/internal/receiver/dispatcher"
	"gelfmover/internal/receiver/translator"
	"strings"
	"time"

	kafka "github.com/segmentio/kafka-go"
)

const headerEventID string = "event_id"

// Record value: the event plus its delivery id
type record struct {
	EventID string `json:"event_id"`
	translator.Event
}

// Returns nil nil when no brokers are configured
func NewOutput(namespace []string, brokers []string, topic string, timeout time.Duration) (module *OutModule, err error) {
	if len(brokers) == 0 {
		return
	}
	if strings.TrimSpace(topic) == "" {
		err = fmt.Errorf("kafka topic is required")
		return
	}
	if timeout <= 0 {
		timeout = global.DefaultSinkTimeout
	}

	module = &OutModule{
		Namespace: append(append([]string(nil), namespace...), global.NSSink),
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireAll,
			MaxAttempts:            1, // retries belong to the dispatcher
			BatchSize:              1,
			WriteTimeout:           timeout,
			ReadTimeout:            timeout,
			AllowAutoTopicCreation: false,
			Async:                  false,
		},
	}
	return
}

func (mod *OutModule) Send(ctx context.Context, eventID string, event translator.Event) (err error) {
	if mod == nil {
		return
	}

	msg, err := message(eventID, event)
	if err != nil {
		mod.Metrics.EncodeErrors.Add(1)
		err = dispatcher.NonRetryable(err)
		return
	}

	err = mod.writer.WriteMessages(ctx, msg)
	if err != nil {
		err = mod.classify(err)
		logctx.LogEvent(ctx, global.VerbosityData, global.WarnLog,
			"Kafka write of event %s failed: %v\n", eventID, err)
		return
	}
	mod.Metrics.Sent.Add(1)
	return
}

func message(eventID string, event translator.Event) (msg kafka.Message, err error) {
	value, err := json.Marshal(record{EventID: eventID, Event: event})
	if err != nil {
		err = fmt.Errorf("failed to encode event: %w", err)
		return
	}
	msg = kafka.Message{
		Key:   []byte(event.ServerName),
		Value: value,
		Headers: []kafka.Header{
			{Key: headerEventID, Value: []byte(eventID)},
		},
	}
	return
}

// Broker errors flagged non-temporary are permanent; anything else may recover
func (mod *OutModule) classify(err error) (classified error) {
	var writeErrs kafka.WriteErrors
	if errors.As(err, &writeErrs) {
		for _, writeErr := range writeErrs {
			if writeErr != nil {
				err = writeErr
				break
			}
		}
	}

	var brokerErr kafka.Error
	if errors.As(err, &brokerErr) && !brokerErr.Temporary() {
		mod.Metrics.Permanent.Add(1)
		classified = dispatcher.NonRetryable(fmt.Errorf("kafka rejected event: %w", err))
		return
	}
	mod.Metrics.Temporary.Add(1)
	classified = dispatcher.Retryable(fmt.Errorf("kafka write failed: %w", err), 0)
	return
}

// Flushes and closes the writer
func (mod *OutModule) Shutdown() (err error) {
	if mod == nil {
		return
	}
	err = mod.writer.Close()
	if err != nil {
		err = fmt.Errorf("failed to close kafka writer: %w", err)
	}
	return
}
