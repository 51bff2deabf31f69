package processor

import (
	"context"
	"errors"
	"gelfmover/internal/global"
	"gelfmover/internal/queue/mpmc"
	"gelfmover/internal/receiver/chunkstore"
	"gelfmover/internal/receiver/listener"
	"gelfmover/internal/receiver/reassembler"
	"gelfmover/internal/receiver/translator"
	"gelfmover/pkg/gelf"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDispatcher struct {
	mu     sync.Mutex
	events []translator.Event
	err    error
}

func (dispatcher *fakeDispatcher) Submit(ctx context.Context, event translator.Event) (eventID string, err error) {
	dispatcher.mu.Lock()
	defer dispatcher.mu.Unlock()
	if dispatcher.err != nil {
		err = dispatcher.err
		return
	}
	dispatcher.events = append(dispatcher.events, event)
	eventID = "0123456789abcdef0123456789abcdef"
	return
}

func (dispatcher *fakeDispatcher) submitted() (events []translator.Event) {
	dispatcher.mu.Lock()
	defer dispatcher.mu.Unlock()
	events = append(events, dispatcher.events...)
	return
}

func newTestInstance(t *testing.T) (instance *Instance, dispatcher *fakeDispatcher) {
	t.Helper()
	store, err := chunkstore.New([]string{global.NSTest}, 4, chunkstore.Limits{MaxSets: 16, MaxBytes: 1 << 20})
	require.NoError(t, err)
	trans, err := translator.New("test-system", nil)
	require.NoError(t, err)

	queue, err := mpmc.New[listener.Container]([]string{global.NSTest}, 16)
	require.NoError(t, err)

	dispatcher = &fakeDispatcher{}
	instance = New([]string{global.NSTest}, queue, Pipeline{
		Reassembler:     reassembler.New([]string{global.NSTest}, store),
		Translator:      trans,
		Dispatcher:      dispatcher,
		MaxDecompressed: 1 << 20,
	})
	return
}

func entry(data []byte) (container listener.Container) {
	container = listener.Container{Data: data, Remote: "192.0.2.1:5000", Received: time.Now()}
	return
}

func record(t *testing.T, codec gelf.Codec) (payload []byte) {
	t.Helper()
	payload, err := gelf.Encode(map[string]any{
		"version":       "1.1",
		"host":          "app-1",
		"short_message": "cache miss storm",
		"timestamp":     1700000000.123,
		"level":         4,
		"_region":       "eu",
	}, codec)
	require.NoError(t, err)
	return
}

func TestHandle_Unchunked(t *testing.T) {
	for _, codec := range []gelf.Codec{gelf.CodecNone, gelf.CodecGzip, gelf.CodecZlib} {
		t.Run(codec.String(), func(t *testing.T) {
			instance, dispatcher := newTestInstance(t)
			instance.Handle(context.Background(), entry(record(t, codec)))

			events := dispatcher.submitted()
			require.Len(t, events, 1)
			assert.Equal(t, "cache miss storm", events[0].Message)
			assert.Equal(t, "app-1", events[0].ServerName)
			assert.Equal(t, translator.LevelWarning, events[0].Level)
			assert.Equal(t, "test-system", events[0].Logger)
			assert.Equal(t, "eu", events[0].Extra["_region"])
			assert.Equal(t, uint64(1), instance.Metrics.Decoded.Load())
		})
	}
}

func TestHandle_ChunkedOutOfOrder(t *testing.T) {
	instance, dispatcher := newTestInstance(t)

	payload := record(t, gelf.CodecGzip)
	datagrams, err := gelf.Fragment([8]byte{9, 9, 9, 9, 9, 9, 9, 9}, payload, gelf.ChunkHeaderLen+len(payload)/3+1)
	require.NoError(t, err)
	require.Len(t, datagrams, 3)

	for _, index := range []int{2, 0} {
		instance.Handle(context.Background(), entry(datagrams[index]))
		assert.Empty(t, dispatcher.submitted())
	}
	instance.Handle(context.Background(), entry(datagrams[1]))

	events := dispatcher.submitted()
	require.Len(t, events, 1)
	assert.Equal(t, "cache miss storm", events[0].Message)
	assert.Equal(t, uint64(3), instance.Metrics.Chunks.Load())
}

func TestHandle_DecodeFailures(t *testing.T) {
	instance, dispatcher := newTestInstance(t)

	instance.Handle(context.Background(), entry([]byte(`{"host":"h","timestamp":1}`)))
	instance.Handle(context.Background(), entry([]byte(`{"short_message":"x","host":"h","timestamp":"1"}`)))
	instance.Handle(context.Background(), entry([]byte(`not json`)))
	instance.Handle(context.Background(), entry([]byte{0x1f, 0x8b, 0x00, 0x01, 0x02}))

	assert.Empty(t, dispatcher.submitted())
	assert.Equal(t, uint64(1), instance.Metrics.DecodeMissingField.Load())
	assert.Equal(t, uint64(2), instance.Metrics.DecodeMalformed.Load())
	assert.Equal(t, uint64(1), instance.Metrics.DecodeCompression.Load())
}

func TestHandle_InvalidChunk(t *testing.T) {
	instance, dispatcher := newTestInstance(t)

	instance.Handle(context.Background(), entry([]byte{0x1e, 0x0f, 1, 2, 3, 4, 5, 6, 7, 8, 5, 2}))
	assert.Equal(t, uint64(1), instance.Metrics.Violations.Load())
	assert.Empty(t, dispatcher.submitted())
}

func TestHandle_SubmitError(t *testing.T) {
	instance, dispatcher := newTestInstance(t)
	dispatcher.err = errors.New("dispatcher is shut down")

	instance.Handle(context.Background(), entry(record(t, gelf.CodecNone)))
	assert.Equal(t, uint64(1), instance.Metrics.SubmitErrors.Load())
}

func TestRun_DrainsInbox(t *testing.T) {
	instance, dispatcher := newTestInstance(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		instance.Run(ctx)
	}()

	for i := 0; i < 5; i++ {
		require.True(t, instance.inbox.Push(entry(record(t, gelf.CodecNone))))
	}
	require.Eventually(t, func() bool { return len(dispatcher.submitted()) == 5 }, 2*time.Second, time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("processor did not stop")
	}

	collection := instance.CollectMetrics(time.Second)
	assert.NotEmpty(t, collection)
}
