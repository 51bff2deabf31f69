package network

import (
	"context"
	"fmt"
	"net"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// Opens a UDP socket that other instances may bind to the same address.
// receiveBuffer of 0 keeps the kernel default.
func ListenUDP(address string, receiveBuffer int) (conn *net.UDPConn, err error) {
	// Using x/sys/unix package for more up-to-date syscall numbers
	cfg := net.ListenConfig{
		Control: func(network, address string, c syscall.RawConn) error {
			var err error
			ctlErr := c.Control(func(fd uintptr) {
				err = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
				if err != nil {
					return
				}

				// Allow multiple active listeners
				err = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1)
				if err != nil {
					return
				}

				if receiveBuffer > 0 {
					err = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_RCVBUF, receiveBuffer)
				}
			})
			if ctlErr != nil {
				return ctlErr
			}
			return err
		},
	}

	pc, err := cfg.ListenPacket(context.Background(), "udp", address)
	if err != nil {
		err = fmt.Errorf("failed to listen on reusable udp socket %s: %w", address, err)
		return
	}
	conn = pc.(*net.UDPConn)
	return
}

// Bytes queued in the socket receive buffer
func PendingBytes(conn *net.UDPConn) (pending int, err error) {
	raw, err := conn.SyscallConn()
	if err != nil {
		err = fmt.Errorf("failed to access raw socket: %w", err)
		return
	}

	var ioctlErr error
	err = raw.Control(func(fd uintptr) {
		pending, ioctlErr = unix.IoctlGetInt(int(fd), unix.SIOCINQ)
	})
	if err == nil {
		err = ioctlErr
	}
	if err != nil {
		err = fmt.Errorf("failed to query socket queue: %w", err)
	}
	return
}

// Polls the receive queue until it is empty or the timeout passes.
// Returns the bytes still queued.
func WaitUntilEmptySocket(conn *net.UDPConn, timeout time.Duration) (dataLeft int, err error) {
	deadline := time.Now().Add(timeout)
	for {
		dataLeft, err = PendingBytes(conn)
		if err != nil || dataLeft == 0 {
			return
		}
		if time.Now().After(deadline) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
}
