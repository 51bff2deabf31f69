package in

import (
	"context"
	"gelfmover/internal/queue/mpmc"
	"gelfmover/internal/receiver/listener"
	"net"
	"sync"
	"time"
)

type InstanceManager struct {
	Mu            sync.Mutex        // For add/remove operations
	nextID        int               // Next free ID for new instance
	Instances     map[int]*Instance // Existing running instances
	address       string            // Network listen address (host:port)
	receiveBuffer int               // SO_RCVBUF per socket, 0 = kernel default
	drainLimit    time.Duration     // Max wait for a socket to empty on removal
	outbox        *mpmc.Queue[listener.Container]
	ctx           context.Context
}

type Instance struct {
	Listener *listener.Instance // Network packet reader
	conn     *net.UDPConn       // Socket (reused) for the listener

	wg     sync.WaitGroup     // Waiter for instance
	cancel context.CancelFunc // Stop instance
}
