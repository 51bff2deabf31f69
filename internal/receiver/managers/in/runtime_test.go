package in

import (
	"context"
	"gelfmover/internal/global"
	"gelfmover/internal/queue/mpmc"
	"gelfmover/internal/receiver/listener"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstanceManager_SharedPortLifecycle(t *testing.T) {
	queue, err := mpmc.New[listener.Container]([]string{global.NSTest}, 64)
	require.NoError(t, err)
	manager := NewInstanceManager(context.Background(), "127.0.0.1:0", 0, 100*time.Millisecond, queue)

	first, err := manager.AddInstance()
	require.NoError(t, err)
	second, err := manager.AddInstance()
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	addr := manager.LocalAddr()
	require.NotNil(t, addr)
	assert.Equal(t, addr.String(), manager.Instances[first].conn.LocalAddr().String())
	assert.Equal(t, addr.String(), manager.Instances[second].conn.LocalAddr().String())

	sender, err := net.DialUDP("udp", nil, addr)
	require.NoError(t, err)
	defer sender.Close()
	_, err = sender.Write([]byte(`{"short_message":"m"}`))
	require.NoError(t, err)
	require.Eventually(t, func() bool { return queue.Len() == 1 }, 2*time.Second, time.Millisecond)

	manager.RemoveInstance(first)
	assert.Len(t, manager.Instances, 1)

	manager.RemoveAll()
	assert.Empty(t, manager.Instances)
	assert.Nil(t, manager.LocalAddr())

	// Unknown ids are ignored
	manager.RemoveInstance(42)
}

func TestInstanceManager_BadAddress(t *testing.T) {
	queue, err := mpmc.New[listener.Container](nil, 4)
	require.NoError(t, err)
	manager := NewInstanceManager(context.Background(), "not-an-address", 0, time.Millisecond, queue)

	_, err = manager.AddInstance()
	assert.Error(t, err)
	assert.Empty(t, manager.Instances)
}
