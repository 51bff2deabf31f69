package proc

import (
	"context"
	"gelfmover/internal/global"
	"gelfmover/internal/receiver/chunkstore"
	"gelfmover/internal/receiver/listener"
	"gelfmover/internal/receiver/processor"
	"gelfmover/internal/receiver/reassembler"
	"gelfmover/internal/receiver/translator"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingDispatcher struct {
	count atomic.Uint64
}

func (dispatcher *countingDispatcher) Submit(ctx context.Context, event translator.Event) (eventID string, err error) {
	dispatcher.count.Add(1)
	eventID = "id"
	return
}

func TestInstanceManager_ProcessesInbox(t *testing.T) {
	store, err := chunkstore.New([]string{global.NSTest}, 2, chunkstore.Limits{MaxSets: 8, MaxBytes: 1 << 16})
	require.NoError(t, err)
	trans, err := translator.New("", nil)
	require.NoError(t, err)
	dispatcher := &countingDispatcher{}

	manager, err := NewInstanceManager(context.Background(), 32, processor.Pipeline{
		Reassembler:     reassembler.New(nil, store),
		Translator:      trans,
		Dispatcher:      dispatcher,
		MaxDecompressed: 1 << 16,
	})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		manager.AddInstance()
	}
	assert.Len(t, manager.Instances, 3)

	for i := 0; i < 10; i++ {
		ok := manager.Inbox.Push(listener.Container{
			Data:     []byte(`{"short_message":"m","host":"h","timestamp":1}`),
			Remote:   "127.0.0.1:1",
			Received: time.Now(),
		})
		require.True(t, ok)
	}
	require.Eventually(t, func() bool { return dispatcher.count.Load() == 10 }, 2*time.Second, time.Millisecond)

	manager.RemoveAll()
	assert.Empty(t, manager.Instances)
}

func TestNewInstanceManager_BadQueueSize(t *testing.T) {
	_, err := NewInstanceManager(context.Background(), 1, processor.Pipeline{})
	assert.Error(t, err)
}
