package in

import (
	"context"
	"fmt"
	"gelfmover/internal/ebpf"
	"gelfmover/internal/global"
	"gelfmover/internal/logctx"
	"gelfmover/internal/network"
	"gelfmover/internal/receiver/listener"
	"net"
	"sort"
	"strconv"
)

// Create additional ingest instance bound to the shared address
func (manager *InstanceManager) AddInstance() (id int, err error) {
	manager.Mu.Lock()
	defer manager.Mu.Unlock()

	id = manager.nextID
	manager.nextID++

	// Add log context
	instanceCtx := logctx.AppendCtxTag(manager.ctx, strconv.Itoa(id))

	conn, err := network.ListenUDP(manager.address, manager.receiveBuffer)
	if err != nil {
		err = fmt.Errorf("failed to open listener %d: %w", id, err)
		return
	}

	// Empty datagrams are dropped in the kernel when filters are permitted
	attached, err := ebpf.AttachEmptyDatagramFilter(conn)
	if err != nil {
		logctx.LogEvent(instanceCtx, global.VerbosityData, global.WarnLog,
			"Socket filter not attached, empty datagrams handled in userspace: %v\n", err)
		err = nil
	} else if attached {
		cookie, _ := ebpf.GetSocketCookie(conn)
		logctx.LogEvent(instanceCtx, global.VerbosityData, global.InfoLog,
			"Attached %s filter to socket %d\n", ebpf.FilterName, cookie)
	}

	// Later instances join the port the kernel picked
	_, port, _ := net.SplitHostPort(manager.address)
	if port == "0" {
		manager.address = conn.LocalAddr().String()
	}

	ingestInstance := &Instance{
		conn:     conn,
		Listener: listener.New(logctx.GetTagList(instanceCtx), conn, manager.outbox),
	}
	manager.Instances[id] = ingestInstance

	// Listener lifetime is independent of the caller, only removal stops it
	ingestCtx, cancelInstance := context.WithCancel(context.Background())
	ingestInstance.cancel = cancelInstance
	ingestCtx = logctx.WithLogger(ingestCtx, logctx.GetLogger(manager.ctx))

	ingestInstance.wg.Add(1)
	go func() {
		defer ingestInstance.wg.Done()
		ingestCtx := logctx.OverwriteCtxTag(ingestCtx, ingestInstance.Listener.Namespace)
		ingestInstance.Listener.Run(ingestCtx)
	}()

	logctx.LogEvent(instanceCtx, global.VerbosityProgress, global.InfoLog,
		"Listening for GELF datagrams on %s\n", conn.LocalAddr())
	return
}

// Remove existing instance after its socket buffer drains
func (manager *InstanceManager) RemoveInstance(id int) {
	manager.Mu.Lock()
	defer manager.Mu.Unlock()

	ingestInstance, ok := manager.Instances[id]
	if !ok {
		return
	}

	if ingestInstance.conn != nil {
		// Listener keeps reading while the kernel queue empties
		dataLeft, err := network.WaitUntilEmptySocket(ingestInstance.conn, manager.drainLimit)
		if err != nil {
			logctx.LogEvent(manager.ctx, global.VerbosityStandard, global.ErrorLog,
				"Listener %d: failed to check current socket buffer size: %v\n", id, err)
		}
		if dataLeft > 0 {
			logctx.LogEvent(manager.ctx, global.VerbosityStandard, global.WarnLog,
				"Listener %d: Socket is being closed with %d bytes left in the buffer\n", id, dataLeft)
		}
	}

	if ingestInstance.cancel != nil {
		ingestInstance.cancel()
	}
	if ingestInstance.conn != nil {
		ingestInstance.conn.Close() // Required for listener to process cancellation
	}

	ingestInstance.wg.Wait()
	delete(manager.Instances, id)
}

// Removes every instance, lowest id first
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

// Bound address of any running instance, nil when none run
func (manager *InstanceManager) LocalAddr() (addr *net.UDPAddr) {
	manager.Mu.Lock()
	defer manager.Mu.Unlock()
	for _, instance := range manager.Instances {
		addr = instance.conn.LocalAddr().(*net.UDPAddr)
		return
	}
	return
}
