package network

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListenUDP_SharedPort(t *testing.T) {
	first, err := ListenUDP("127.0.0.1:0", 1<<20)
	require.NoError(t, err)
	defer first.Close()

	second, err := ListenUDP(first.LocalAddr().String(), 0)
	require.NoError(t, err, "second listener should bind the same port")
	defer second.Close()

	assert.Equal(t, first.LocalAddr().String(), second.LocalAddr().String())
}

func TestWaitUntilEmptySocket(t *testing.T) {
	conn, err := ListenUDP("127.0.0.1:0", 0)
	require.NoError(t, err)
	defer conn.Close()

	left, err := WaitUntilEmptySocket(conn, 50*time.Millisecond)
	require.NoError(t, err)
	assert.Zero(t, left)

	sender, err := net.DialUDP("udp", nil, conn.LocalAddr().(*net.UDPAddr))
	require.NoError(t, err)
	defer sender.Close()
	_, err = sender.Write([]byte("queued"))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		pending, err := PendingBytes(conn)
		return err == nil && pending > 0
	}, time.Second, time.Millisecond)

	began := time.Now()
	left, err = WaitUntilEmptySocket(conn, 50*time.Millisecond)
	require.NoError(t, err)
	assert.Positive(t, left)
	assert.GreaterOrEqual(t, time.Since(began), 50*time.Millisecond)

	buf := make([]byte, 64)
	_, _, err = conn.ReadFromUDP(buf)
	require.NoError(t, err)
	left, err = WaitUntilEmptySocket(conn, time.Second)
	require.NoError(t, err)
	assert.Zero(t, left)
}

func TestMaxUDPPayload_Loopback(t *testing.T) {
	size, err := MaxUDPPayload("127.0.0.1:12201")
	require.NoError(t, err)
	assert.Positive(t, size)
	assert.Less(t, size, 65536)
}
