// Turns queued datagrams into events: reassembly, decoding, translation, submission
package processor

import (
	"context"
	"gelfmover/internal/atomics"
	"gelfmover/internal/global"
	"gelfmover/internal/logctx"
	"gelfmover/internal/queue/mpmc"
	"gelfmover/internal/receiver/listener"
	"gelfmover/pkg/gelf"
	"runtime/debug"
	"time"
)

// Creates new processor with requested queue as inbox
func New(namespace []string, queue *mpmc.Queue[listener.Container], pipeline Pipeline) (new *Instance) {
	new = &Instance{
		Namespace: append(append([]string(nil), namespace...), global.NSWorker),
		inbox:     queue,
		pipeline:  pipeline,
	}
	return
}

func (instance *Instance) Run(ctx context.Context) {
	for {
		// Stop this worker when cancel requested
		select {
		case <-ctx.Done():
			return
		default:
		}

		func() {
			// Record panics and continue processing
			defer func() {
				if fatalError := recover(); fatalError != nil {
					stack := debug.Stack()
					logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog,
						"panic in processor worker thread: %v\n%s", fatalError, stack)
				}
			}()

			queueEntry, received := instance.inbox.Pop(ctx)
			if !received {
				return
			}
			instance.Handle(ctx, queueEntry)
		}()
	}
}

// Processes one datagram through to submission
func (instance *Instance) Handle(ctx context.Context, entry listener.Container) {
	processingStartTime := time.Now()
	defer func() {
		durNs := uint64(time.Since(processingStartTime).Nanoseconds())
		instance.Metrics.SumNs.Add(durNs)
		atomics.StoreMax(&instance.Metrics.MaxNs, durNs)
	}()

	payload := entry.Data
	if gelf.IsChunked(payload) {
		instance.Metrics.Chunks.Add(1)

		header, chunk, err := gelf.ParseChunk(payload)
		if err != nil {
			instance.Metrics.Violations.Add(1)
			logctx.LogEvent(ctx, global.VerbosityProgress, global.WarnLog,
				"Invalid chunk from %s: %v\n", entry.Remote, err)
			return
		}

		var complete bool
		payload, complete, err = instance.pipeline.Reassembler.Ingest(ctx, header, chunk, entry.Received)
		if err != nil {
			logctx.LogEvent(ctx, global.VerbosityProgress, global.WarnLog,
				"Chunk from %s not stored: %v\n", entry.Remote, err)
			return
		}
		if !complete {
			return
		}
	}

	msg, err := gelf.Decode(payload, instance.pipeline.MaxDecompressed)
	if err != nil {
		kind, _ := gelf.DecodeKind(err)
		switch kind {
		case gelf.KindCompression:
			instance.Metrics.DecodeCompression.Add(1)
		case gelf.KindMissingField:
			instance.Metrics.DecodeMissingField.Add(1)
		default:
			instance.Metrics.DecodeMalformed.Add(1)
		}
		logctx.LogEvent(ctx, global.VerbosityProgress, global.WarnLog,
			"Discarded message from %s: %v\n", entry.Remote, err)
		return
	}
	instance.Metrics.Decoded.Add(1)

	event := instance.pipeline.Translator.Translate(msg)

	eventID, err := instance.pipeline.Dispatcher.Submit(ctx, event)
	if err != nil {
		instance.Metrics.SubmitErrors.Add(1)
		logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog,
			"Failed to submit message from %s (%s): %v\n", entry.Remote, msg.Host, err)
		return
	}
	logctx.LogEvent(ctx, global.VerbosityFullData, global.InfoLog,
		"Submitted event %s from %s host %q level %s\n", eventID, entry.Remote, msg.Host, event.Level)
}
