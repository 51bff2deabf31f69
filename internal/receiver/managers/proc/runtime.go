package proc

import (
	"context"
	"gelfmover/internal/logctx"
	"gelfmover/internal/receiver/processor"
	"sort"
	"strconv"
)

// Create additional processor instance
func (manager *InstanceManager) AddInstance() (id int) {
	manager.Mu.Lock()
	defer manager.Mu.Unlock()

	id = manager.nextID
	manager.nextID++

	// Add log context
	instanceCtx := logctx.AppendCtxTag(manager.ctx, strconv.Itoa(id))

	procInstance := &Instance{
		Processor: processor.New(logctx.GetTagList(instanceCtx), manager.Inbox, manager.pipeline),
	}
	manager.Instances[id] = procInstance

	procCtx, cancelInstance := context.WithCancel(context.Background())
	procInstance.cancel = cancelInstance
	procCtx = logctx.WithLogger(procCtx, logctx.GetLogger(manager.ctx))

	procInstance.wg.Add(1)
	go func() {
		defer procInstance.wg.Done()
		procCtx := logctx.OverwriteCtxTag(procCtx, procInstance.Processor.Namespace)
		procInstance.Processor.Run(procCtx)
	}()
	return
}

// Remove existing instance
func (manager *InstanceManager) RemoveInstance(id int) {
	manager.Mu.Lock()
	defer manager.Mu.Unlock()

	procInstance, ok := manager.Instances[id]
	if ok {
		if procInstance.cancel != nil {
			procInstance.cancel()
		}

		procInstance.wg.Wait()

		delete(manager.Instances, id)
	}
}

func (manager *InstanceManager) RemoveAll() {
	manager.Mu.Lock()
	ids := make([]int, 0, len(manager.Instances))
	for id := range manager.Instances {
		ids = append(ids, id)
	}
	manager.Mu.Unlock()

	sort.Ints(ids)
	for _, id := range ids {
		manager.RemoveInstance(id)
	}
}
