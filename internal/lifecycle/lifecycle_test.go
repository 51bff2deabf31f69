package lifecycle

import (
	"context"
	"net"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDaemon struct {
	shutdowns atomic.Int32
}

func (daemon *fakeDaemon) Shutdown() { daemon.shutdowns.Add(1) }

func TestNotify_NoSocket(t *testing.T) {
	t.Setenv("NOTIFY_SOCKET", "")
	assert.NoError(t, NotifyReady(context.Background()))
}

func TestNotify_SendsMessages(t *testing.T) {
	sockPath := filepath.Join(t.TempDir(), "notify.sock")
	conn, err := net.ListenUnixgram("unixgram", &net.UnixAddr{Name: sockPath, Net: "unixgram"})
	require.NoError(t, err)
	defer conn.Close()

	t.Setenv("NOTIFY_SOCKET", sockPath)

	ctx := context.Background()
	require.NoError(t, NotifyReady(ctx))
	require.NoError(t, NotifyStatus(ctx, "listening"))

	buf := make([]byte, 256)
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	n, err := conn.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "READY=1", string(buf[:n]))

	n, err = conn.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "STATUS=listening", string(buf[:n]))
}

func TestNotify_DialFailure(t *testing.T) {
	t.Setenv("NOTIFY_SOCKET", filepath.Join(t.TempDir(), "missing.sock"))
	assert.Error(t, NotifyStopping(context.Background()))
}

func TestSignalHandler_ContextEnd(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	daemon := &fakeDaemon{}

	done := make(chan struct{})
	go func() {
		SignalHandler(ctx, daemon)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("signal handler did not return after context cancel")
	}
	assert.Equal(t, int32(1), daemon.shutdowns.Load())
}
