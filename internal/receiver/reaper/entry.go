// Periodically evicts fragment sets that missed the completion deadline
package reaper

import (
	"context"
	"fmt"
	"gelfmover/internal/global"
	"gelfmover/internal/logctx"
	"gelfmover/internal/receiver/chunkstore"
	"runtime/debug"
	"time"
)

func New(namespace []string, store *chunkstore.Store, interval, deadline time.Duration) (new *Instance, err error) {
	if interval <= 0 {
		err = fmt.Errorf("sweep interval must be positive, got %s", interval)
		return
	}
	if deadline <= 0 {
		err = fmt.Errorf("completion deadline must be positive, got %s", deadline)
		return
	}

	new = &Instance{
		Namespace: append(append([]string(nil), namespace...), global.NSReaper),
		store:     store,
		interval:  interval,
		deadline:  deadline,
	}
	return
}

// Evicts every fragment set idle longer than the deadline as of now
func (instance *Instance) Sweep(ctx context.Context, now time.Time) (evicted int) {
	expired := instance.store.Sweep(now, instance.deadline)
	evicted = len(expired)

	instance.Metrics.Sweeps.Add(1)
	instance.Metrics.TimedOut.Add(uint64(evicted))

	for _, set := range expired {
		logctx.LogEvent(ctx, global.VerbosityProgress, global.WarnLog,
			"Message %x timed out with %d of %d chunks after %s\n",
			set.ID, set.Received, set.Total, set.Age.Round(time.Millisecond))
	}
	return
}

// Sweeps on a fixed interval until ctx is cancelled
func (instance *Instance) Run(ctx context.Context) {
	ticker := time.NewTicker(instance.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			func() {
				// Record panics and keep sweeping
				defer func() {
					if fatalError := recover(); fatalError != nil {
						logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog,
							"panic in reaper thread: %v\n%s", fatalError, debug.Stack())
					}
				}()
				instance.Sweep(ctx, now)
			}()
		}
	}
}
