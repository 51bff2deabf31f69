package reaper

import (
	"context"
	"gelfmover/internal/global"
	"gelfmover/internal/receiver/chunkstore"
	"gelfmover/pkg/gelf"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Validation(t *testing.T) {
	store, err := chunkstore.New([]string{global.NSTest}, 1, chunkstore.Limits{})
	require.NoError(t, err)

	_, err = New(nil, store, 0, time.Second)
	assert.Error(t, err)
	_, err = New(nil, store, time.Second, 0)
	assert.Error(t, err)
}

func TestSweep_EvictsOnlyStale(t *testing.T) {
	store, err := chunkstore.New([]string{global.NSTest}, 4, chunkstore.Limits{})
	require.NoError(t, err)
	instance, err := New([]string{global.NSTest}, store, time.Second, 5*time.Second)
	require.NoError(t, err)

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	_, _, _, err = store.Insert(gelf.ChunkHeader{ID: [8]byte{1}, Index: 0, Total: 2}, []byte("a"), base)
	require.NoError(t, err)
	_, _, _, err = store.Insert(gelf.ChunkHeader{ID: [8]byte{2}, Index: 0, Total: 2}, []byte("b"), base.Add(3*time.Second))
	require.NoError(t, err)

	ctx := context.Background()
	assert.Equal(t, 0, instance.Sweep(ctx, base.Add(5*time.Second)))
	assert.Equal(t, 1, instance.Sweep(ctx, base.Add(6*time.Second)))
	assert.Equal(t, 1, store.Len())

	// Remaining chunk for the evicted message cannot complete it
	_, _, complete, err := store.Insert(gelf.ChunkHeader{ID: [8]byte{1}, Index: 1, Total: 2}, []byte("a"), base.Add(6*time.Second))
	require.NoError(t, err)
	assert.False(t, complete)

	assert.Equal(t, uint64(2), instance.Metrics.Sweeps.Load())
	assert.Equal(t, uint64(1), instance.Metrics.TimedOut.Load())
}

func TestRun_SweepsOnInterval(t *testing.T) {
	store, err := chunkstore.New([]string{global.NSTest}, 4, chunkstore.Limits{})
	require.NoError(t, err)
	instance, err := New([]string{global.NSTest}, store, 10*time.Millisecond, time.Millisecond)
	require.NoError(t, err)

	_, _, _, err = store.Insert(gelf.ChunkHeader{ID: [8]byte{9}, Index: 0, Total: 3}, []byte("x"), time.Now().Add(-time.Second))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		instance.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return store.Len() == 0 }, 2*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reaper did not stop after cancel")
	}
	assert.GreaterOrEqual(t, instance.Metrics.TimedOut.Load(), uint64(1))
}
