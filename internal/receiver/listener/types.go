package listener

import (
	"gelfmover/internal/queue/mpmc"
	"net"
	"time"
)

// One datagram handed from a listener to the processors
type Container struct {
	Data     []byte
	Remote   string    // sender ip:port
	Received time.Time // read time, used as the chunk arrival time
}

type Instance struct {
	Namespace []string
	conn      *net.UDPConn
	Outbox    *mpmc.Queue[Container]
	Metrics   MetricStorage
}
