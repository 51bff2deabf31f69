// Debug sink printing each event as one JSON line
package console

import (
	"context"
	"encoding/json"
	"fmt"
	"gelfmover/internal/receiver/dispatcher"
	"gelfmover/internal/receiver/translator"
	"io"
	"sync"
)

type OutModule struct {
	mu  sync.Mutex
	out io.Writer
}

type line struct {
	EventID string `json:"event_id"`
	translator.Event
}

func NewOutput(out io.Writer) (module *OutModule) {
	module = &OutModule{out: out}
	return
}

func (mod *OutModule) Send(ctx context.Context, eventID string, event translator.Event) (err error) {
	encoded, err := json.Marshal(line{EventID: eventID, Event: event})
	if err != nil {
		err = dispatcher.NonRetryable(fmt.Errorf("failed to encode event: %w", err))
		return
	}
	encoded = append(encoded, '\n')

	mod.mu.Lock()
	defer mod.mu.Unlock()
	_, err = mod.out.Write(encoded)
	if err != nil {
		err = fmt.Errorf("failed writing event: %w", err)
	}
	return
}
