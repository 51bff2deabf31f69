package reassembler

import (
	"context"
	"errors"
	"gelfmover/internal/global"
	"gelfmover/internal/logctx"
	"gelfmover/internal/receiver/chunkstore"
	"gelfmover/pkg/gelf"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInstance(t *testing.T) (instance *Instance, store *chunkstore.Store) {
	t.Helper()
	store, err := chunkstore.New([]string{global.NSTest}, 8, chunkstore.Limits{MaxSets: 500})
	require.NoError(t, err)
	instance = New([]string{global.NSTest}, store)
	return
}

type chunk struct {
	header gelf.ChunkHeader
	data   []byte
}

func split(t *testing.T, id string, payload []byte, size int) (chunks []chunk) {
	t.Helper()
	var msgID [8]byte
	copy(msgID[:], id)

	datagrams, err := gelf.Fragment(msgID, payload, gelf.ChunkHeaderLen+size)
	require.NoError(t, err)
	for _, datagram := range datagrams {
		header, data, err := gelf.ParseChunk(datagram)
		require.NoError(t, err)
		chunks = append(chunks, chunk{header, data})
	}
	return
}

func feed(t *testing.T, instance *Instance, chunks []chunk) (payloads [][]byte) {
	t.Helper()
	now := time.Now()
	for _, c := range chunks {
		payload, complete, err := instance.Ingest(context.Background(), c.header, c.data, now)
		require.NoError(t, err)
		if complete {
			payloads = append(payloads, payload)
		}
	}
	return
}

func TestIngest_OrderIndependent(t *testing.T) {
	payload := []byte(`{"short_message":"abcdefghijklmnopqrstuvwxyz0123456789","host":"h","timestamp":1}`)
	chunks := split(t, "ABCDEFGH", payload, 7)
	require.Greater(t, len(chunks), 3)

	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 20; round++ {
		instance, store := newInstance(t)

		shuffled := append([]chunk(nil), chunks...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		payloads := feed(t, instance, shuffled)
		require.Len(t, payloads, 1, "round %d", round)
		assert.Equal(t, payload, payloads[0])
		assert.Equal(t, 0, store.Len())
	}
}

func TestIngest_ExampleOrder(t *testing.T) {
	chunks := split(t, "ABCDEFGH", []byte("aaabbbccc"), 3)
	require.Len(t, chunks, 3)

	inOrder, _ := newInstance(t)
	outOfOrder, _ := newInstance(t)

	first := feed(t, inOrder, chunks)
	second := feed(t, outOfOrder, []chunk{chunks[2], chunks[0], chunks[1]})

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, first[0], second[0])
	assert.Equal(t, "aaabbbccc", string(second[0]))
}

func TestIngest_MaximumChunks(t *testing.T) {
	payload := make([]byte, 128*4)
	for i := range payload {
		payload[i] = byte(i)
	}
	chunks := split(t, "MAXCHUNK", payload, 4)
	require.Len(t, chunks, gelf.MaxChunks)

	instance, _ := newInstance(t)
	payloads := feed(t, instance, chunks)
	require.Len(t, payloads, 1)
	assert.Equal(t, payload, payloads[0])
}

func TestIngest_ConcurrentProcessors(t *testing.T) {
	payload := make([]byte, gelf.MaxChunks*16)
	for i := range payload {
		payload[i] = byte(i * 7)
	}
	chunks := split(t, "PARALLEL", payload, 16)
	require.Len(t, chunks, gelf.MaxChunks)

	// Debug verbosity so the buffered chunk progress line is produced
	done := make(chan struct{})
	defer close(done)
	ctx := logctx.New(context.Background(), global.NSTest, global.VerbosityDebug, done)

	instance, store := newInstance(t)
	const processors = 4
	results := make(chan []byte, processors)

	var wg sync.WaitGroup
	for p := 0; p < processors; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := p; i < len(chunks); i += processors {
				out, complete, err := instance.Ingest(ctx, chunks[i].header, chunks[i].data, time.Now())
				if !assert.NoError(t, err) {
					return
				}
				if complete {
					results <- out
				}
			}
		}(p)
	}
	wg.Wait()
	close(results)

	var payloads [][]byte
	for out := range results {
		payloads = append(payloads, out)
	}
	require.Len(t, payloads, 1)
	assert.Equal(t, payload, payloads[0])
	assert.Equal(t, 0, store.Len())
	assert.Equal(t, uint64(gelf.MaxChunks), instance.Metrics.Chunks.Load())
}

func TestIngest_DuplicateCompletesOnce(t *testing.T) {
	chunks := split(t, "ABCDEFGH", []byte("xxyyzz"), 2)
	require.Len(t, chunks, 3)

	instance, _ := newInstance(t)
	payloads := feed(t, instance, []chunk{chunks[0], chunks[1], chunks[1], chunks[2]})

	require.Len(t, payloads, 1)
	assert.Equal(t, "xxyyzz", string(payloads[0]))
	assert.Equal(t, uint64(1), instance.Metrics.Assembled.Load())
}

func TestIngest_Violations(t *testing.T) {
	instance, store := newInstance(t)
	ctx := context.Background()
	now := time.Now()

	var id [8]byte
	copy(id[:], "ABCDEFGH")

	tests := []struct {
		name   string
		header gelf.ChunkHeader
	}{
		{"index beyond total", gelf.ChunkHeader{ID: id, Index: 4, Total: 4}},
		{"zero total", gelf.ChunkHeader{ID: id, Index: 0, Total: 0}},
		{"total above maximum", gelf.ChunkHeader{ID: id, Index: 0, Total: 200}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, complete, err := instance.Ingest(ctx, tt.header, []byte("x"), now)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrProtocolViolation))
			assert.False(t, complete)
		})
	}
	assert.Equal(t, 0, store.Len())

	_, _, err := instance.Ingest(ctx, gelf.ChunkHeader{ID: id, Index: 0, Total: 2}, []byte("a"), now)
	require.NoError(t, err)
	_, _, err = instance.Ingest(ctx, gelf.ChunkHeader{ID: id, Index: 1, Total: 3}, []byte("b"), now)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrProtocolViolation))
	assert.True(t, errors.Is(err, chunkstore.ErrTotalMismatch))

	assert.Equal(t, uint64(4), instance.Metrics.Violations.Load())
}

func TestIngest_StoreFull(t *testing.T) {
	store, err := chunkstore.New([]string{global.NSTest}, 1, chunkstore.Limits{MaxSets: 1})
	require.NoError(t, err)
	instance := New([]string{global.NSTest}, store)
	now := time.Now()

	_, _, err = instance.Ingest(context.Background(), gelf.ChunkHeader{ID: [8]byte{1}, Index: 0, Total: 2}, []byte("a"), now)
	require.NoError(t, err)
	_, _, err = instance.Ingest(context.Background(), gelf.ChunkHeader{ID: [8]byte{2}, Index: 0, Total: 2}, []byte("b"), now)
	require.Error(t, err)
	assert.True(t, errors.Is(err, chunkstore.ErrStoreFull))
	assert.False(t, errors.Is(err, ErrProtocolViolation))
	assert.Equal(t, uint64(1), instance.Metrics.Rejected.Load())
}
