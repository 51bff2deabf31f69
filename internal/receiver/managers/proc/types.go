package proc

import (
	"context"
	"gelfmover/internal/queue/mpmc"
	"gelfmover/internal/receiver/listener"
	"gelfmover/internal/receiver/processor"
	"sync"
)

type InstanceManager struct {
	Mu        sync.Mutex        // For add/remove operations
	nextID    int               // Next free ID for new instance
	Instances map[int]*Instance // Existing running
	Inbox     *mpmc.Queue[listener.Container]
	pipeline  processor.Pipeline // Stages shared by every processor
	ctx       context.Context
}

type Instance struct {
	Processor *processor.Instance // Datagram to event worker

	wg     sync.WaitGroup     // Waiter for instance
	cancel context.CancelFunc // Stop instance
}
