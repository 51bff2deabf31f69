// Reads datagrams from the network and conducts pre-validation
package listener

import (
	"context"
	"errors"
	"gelfmover/internal/atomics"
	"gelfmover/internal/global"
	"gelfmover/internal/logctx"
	"gelfmover/internal/queue/mpmc"
	"gelfmover/pkg/gelf"
	"net"
	"runtime/debug"
	"time"
)

func New(namespace []string, conn *net.UDPConn, queue *mpmc.Queue[Container]) (new *Instance) {
	new = &Instance{
		Namespace: append(append([]string(nil), namespace...), global.NSListen),
		conn:      conn,
		Outbox:    queue,
	}
	return
}

func (instance *Instance) Run(ctx context.Context) {
	buffer := make([]byte, global.MaxDatagramSize)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		stop := instance.receive(ctx, buffer)
		if stop {
			return
		}
	}
}

// Reads and forwards one datagram. Returns true once the socket is closed.
func (instance *Instance) receive(ctx context.Context, buffer []byte) (stop bool) {
	defer func() {
		// Record panics and continue listening
		if fatalError := recover(); fatalError != nil {
			stack := debug.Stack()
			logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog,
				"panic in listener worker thread: %v\n%s", fatalError, stack)
		}
	}()

	// Blocking until data or connection is closed by manager
	endIndex, remoteAddr, err := instance.conn.ReadFromUDP(buffer)
	start := time.Now() // Record start time immediately after we read the packet
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
			stop = true
			return
		}
		logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog,
			"Failed reading data from socket: %v\n", err)
		return
	}
	defer func() { instance.Metrics.BusyNs.Add(uint64(time.Since(start))) }()

	instance.Metrics.Datagrams.Add(1)
	instance.Metrics.Bytes.Add(uint64(endIndex))

	err = Validate(buffer[:endIndex])
	if err != nil {
		instance.Metrics.Violations.Add(1)
		logctx.LogEvent(ctx, global.VerbosityProgress, global.WarnLog,
			"Dropped datagram from %s: %v\n", remoteAddr, err)
		return
	}

	entry := Container{
		Data:     append([]byte(nil), buffer[:endIndex]...),
		Remote:   remoteAddr.String(),
		Received: start,
	}

	durNs := uint64(time.Since(start).Nanoseconds())
	instance.Metrics.SumNs.Add(durNs)
	atomics.StoreMax(&instance.Metrics.MaxNs, durNs)

	if !instance.Outbox.Push(entry) {
		instance.Metrics.QueueFull.Add(1)
		logctx.LogEvent(ctx, global.VerbosityData, global.WarnLog,
			"Processor queue full, dropped datagram from %s\n", remoteAddr)
		return
	}
	instance.Metrics.Forwarded.Add(1)
	return
}

// Cheap framing checks done before a datagram is queued
func Validate(datagram []byte) (err error) {
	if len(datagram) == 0 {
		err = errEmptyDatagram
		return
	}
	if gelf.IsChunked(datagram) {
		_, _, err = gelf.ParseChunk(datagram)
	}
	return
}

var errEmptyDatagram = errors.New("empty datagram")
