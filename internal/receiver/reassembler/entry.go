// Turns GELF chunks into complete payloads using a shared chunk store
package reassembler

import (
	"context"
	"errors"
	"fmt"
	"gelfmover/internal/atomics"
	"gelfmover/internal/global"
	"gelfmover/internal/logctx"
	"gelfmover/internal/receiver/chunkstore"
	"gelfmover/pkg/gelf"
	"time"
)

var ErrProtocolViolation = errors.New("protocol violation")

func New(namespace []string, store *chunkstore.Store) (new *Instance) {
	new = &Instance{
		Namespace: append(append([]string(nil), namespace...), global.NSReasm),
		store:     store,
	}
	return
}

// Records one chunk. Returns the concatenated payload once every index of its
// message has arrived; the fragment set is gone from the store by then.
func (instance *Instance) Ingest(ctx context.Context, header gelf.ChunkHeader, chunk []byte, now time.Time) (payload []byte, complete bool, err error) {
	instance.Metrics.Chunks.Add(1)

	err = header.Validate()
	if err != nil {
		instance.Metrics.Violations.Add(1)
		err = fmt.Errorf("%w: %w", ErrProtocolViolation, err)
		return
	}

	set, received, complete, err := instance.store.Insert(header, chunk, now)
	if err != nil {
		if errors.Is(err, chunkstore.ErrTotalMismatch) {
			instance.Metrics.Violations.Add(1)
			err = fmt.Errorf("%w: %w", ErrProtocolViolation, err)
		} else {
			instance.Metrics.Rejected.Add(1)
		}
		logctx.LogEvent(ctx, global.VerbosityProgress, global.WarnLog,
			"Rejected chunk %s: %v\n", header, err)
		return
	}
	if !complete {
		logctx.LogEvent(ctx, global.VerbosityDebug, global.InfoLog,
			"Buffered chunk %s (%d/%d present)\n", header, received, header.Total)
		return
	}

	payload = set.Assemble()

	waitNs := uint64(now.Sub(set.FirstSeen).Nanoseconds())
	instance.Metrics.Assembled.Add(1)
	instance.Metrics.SumWaitNs.Add(waitNs)
	atomics.StoreMax(&instance.Metrics.MaxWaitNs, waitNs)

	logctx.LogEvent(ctx, global.VerbosityData, global.InfoLog,
		"Reassembled message %x from %d chunks (%d bytes)\n", header.ID, set.Total, len(payload))
	return
}
