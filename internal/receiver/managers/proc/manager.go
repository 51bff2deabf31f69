// Manages processor worker instances
package proc

import (
	"context"
	"gelfmover/internal/global"
	"gelfmover/internal/logctx"
	"gelfmover/internal/queue/mpmc"
	"gelfmover/internal/receiver/listener"
	"gelfmover/internal/receiver/processor"
)

// Creates new instance manager along with the inbox queue listeners feed
func NewInstanceManager(ctx context.Context, inQueueSize int, pipeline processor.Pipeline) (new *InstanceManager, err error) {
	// Add log context
	ctx = logctx.AppendCtxTag(ctx, global.NSmProc)

	inQueue, err := mpmc.New[listener.Container](logctx.GetTagList(ctx), inQueueSize)
	if err != nil {
		return
	}

	new = &InstanceManager{
		Instances: make(map[int]*Instance),
		Inbox:     inQueue,
		pipeline:  pipeline,
		ctx:       ctx,
	}
	return
}
