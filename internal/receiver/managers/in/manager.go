// Manages packet listener worker instances
package in

import (
	"context"
	"gelfmover/internal/global"
	"gelfmover/internal/logctx"
	"gelfmover/internal/queue/mpmc"
	"gelfmover/internal/receiver/listener"
	"time"
)

// Creates new instance manager
func NewInstanceManager(ctx context.Context, address string, receiveBuffer int, drainLimit time.Duration, outQueue *mpmc.Queue[listener.Container]) (new *InstanceManager) {
	ctx = logctx.AppendCtxTag(ctx, global.NSmIngest)

	new = &InstanceManager{
		Instances:     make(map[int]*Instance),
		address:       address,
		receiveBuffer: receiveBuffer,
		drainLimit:    drainLimit,
		outbox:        outQueue,
		ctx:           ctx,
	}
	return
}
