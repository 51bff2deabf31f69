package processor

import (
	"context"
	"gelfmover/internal/queue/mpmc"
	"gelfmover/internal/receiver/listener"
	"gelfmover/internal/receiver/reassembler"
	"gelfmover/internal/receiver/translator"
)

// Accepts translated events for delivery
type Submitter interface {
	Submit(ctx context.Context, event translator.Event) (eventID string, err error)
}

// Shared stages every processor drives
type Pipeline struct {
	Reassembler     *reassembler.Instance
	Translator      *translator.Translator
	Dispatcher      Submitter
	MaxDecompressed int64
}

type Instance struct {
	Namespace []string
	inbox     *mpmc.Queue[listener.Container]
	pipeline  Pipeline
	Metrics   MetricStorage
}
