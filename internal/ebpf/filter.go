// Kernel side socket filters for the GELF listeners
package ebpf

import (
	"errors"
	"fmt"
	"net"
	"runtime"

	"github.com/cilium/ebpf"
	"github.com/cilium/ebpf/asm"
	"golang.org/x/sys/unix"
)

// Socket filter keeping datagrams that carry at least one payload byte.
// skb->len still includes the UDP header when socket filters run.
func filterSpec() (spec *ebpf.ProgramSpec) {
	spec = &ebpf.ProgramSpec{
		Name:    FilterName,
		Type:    ebpf.SocketFilter,
		License: "GPL",
		Instructions: asm.Instructions{
			// r0 = skb->len
			asm.LoadMem(asm.R0, asm.R1, 0, asm.Word),
			asm.JGT.Imm(asm.R0, udpHeaderLen, "keep"),
			// Drop
			asm.Mov.Imm(asm.R0, 0),
			asm.Return(),
			// Keep whole datagram (r0 already holds its length)
			asm.Return().WithSymbol("keep"),
		},
	}
	return
}

// Attaches the empty datagram filter to conn.
// Returns attached=false without error on platforms without eBPF.
func AttachEmptyDatagramFilter(conn *net.UDPConn) (attached bool, err error) {
	if runtime.GOOS != "linux" {
		return
	}

	prog, err := ebpf.NewProgram(filterSpec())
	if err != nil {
		err = fmt.Errorf("load socket filter: %w", err)
		return
	}
	// Socket keeps its own reference once attached
	defer prog.Close()

	rawConn, err := conn.SyscallConn()
	if err != nil {
		err = fmt.Errorf("failed to get raw socket: %w", err)
		return
	}

	var attachErr error
	err = rawConn.Control(func(fd uintptr) {
		attachErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_ATTACH_BPF, prog.FD())
	})
	err = errors.Join(err, attachErr)
	if err != nil {
		err = fmt.Errorf("attach socket filter: %w", err)
		return
	}

	attached = true
	return
}
