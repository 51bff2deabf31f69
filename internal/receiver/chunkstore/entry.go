// Holds partially received GELF chunk sets keyed by message id
package chunkstore

import (
	"errors"
	"fmt"
	"gelfmover/internal/global"
	"gelfmover/pkg/gelf"
	"hash/fnv"
	"time"
)

var (
	ErrTotalMismatch = errors.New("chunk total conflicts with stored total")
	ErrStoreFull     = errors.New("chunk store at capacity")
)

// Creates a store with shardCount independently locked buckets
func New(namespace []string, shardCount int, limits Limits) (new *Store, err error) {
	if shardCount < 1 {
		err = fmt.Errorf("shard count must be at least 1, got %d", shardCount)
		return
	}
	if limits.MaxSets < 0 || limits.MaxBytes < 0 {
		err = fmt.Errorf("limits must not be negative")
		return
	}

	new = &Store{
		Namespace: append(append([]string(nil), namespace...), global.NSStore),
		buckets:   make([]*bucket, shardCount),
		limits:    limits,
	}
	for i := range new.buckets {
		new.buckets[i] = &bucket{sets: make(map[[8]byte]*FragmentSet)}
	}
	return
}

func (store *Store) bucketFor(id [8]byte) (b *bucket) {
	hasher := fnv.New32a()
	hasher.Write(id[:])
	b = store.buckets[hasher.Sum32()%uint32(len(store.buckets))]
	return
}

// Records one chunk and reports how many distinct indices its set now holds.
// The set is returned only with complete=true, after it has been removed from
// the store; the caller then owns it exclusively. Incomplete sets stay private
// to the store. Header bounds must already be validated.
func (store *Store) Insert(header gelf.ChunkHeader, payload []byte, now time.Time) (set *FragmentSet, received int, complete bool, err error) {
	b := store.bucketFor(header.ID)
	b.mu.Lock()
	defer b.mu.Unlock()

	set, exists := b.sets[header.ID]
	if exists && set.Total != header.Total {
		store.Metrics.TotalMismatch.Add(1)
		err = fmt.Errorf("%w: id %x stored %d, received %d", ErrTotalMismatch, header.ID, set.Total, header.Total)
		set = nil
		return
	}

	if !exists {
		set = newFragmentSet(header, now)
		if header.Total > 1 {
			err = store.reserve(int64(len(payload)))
			if err != nil {
				set = nil
				return
			}
			b.sets[header.ID] = set
		}
		store.Metrics.Created.Add(1)
	} else {
		err = store.grow(set.growth(header.Index, payload))
		if err != nil {
			received = set.count
			set = nil
			return
		}
	}

	if set.received[header.Index] {
		store.Metrics.Duplicates.Add(1)
	}
	set.put(header.Index, payload, now)
	received = set.count

	if set.count < int(set.Total) {
		set = nil
		return
	}

	complete = true
	if header.Total > 1 {
		delete(b.sets, header.ID)
		store.sets.Add(-1)
		store.bytes.Add(-set.size)
	}
	store.Metrics.Completed.Add(1)
	return
}

// Accounts delta more bytes for an existing set, refusing growth past MaxBytes
func (store *Store) grow(delta int64) (err error) {
	buffered := store.bytes.Add(delta)
	if delta <= 0 || store.limits.MaxBytes == 0 || buffered <= store.limits.MaxBytes {
		return
	}
	store.bytes.Add(-delta)
	store.Metrics.RejectedFull.Add(1)
	err = fmt.Errorf("%w: %d buffered bytes", ErrStoreFull, store.limits.MaxBytes)
	return
}

// Claims room for one new set holding firstChunk bytes
func (store *Store) reserve(firstChunk int64) (err error) {
	sets := store.sets.Add(1)
	if store.limits.MaxSets > 0 && sets > int64(store.limits.MaxSets) {
		store.sets.Add(-1)
		store.Metrics.RejectedFull.Add(1)
		err = fmt.Errorf("%w: %d fragment sets", ErrStoreFull, store.limits.MaxSets)
		return
	}

	buffered := store.bytes.Add(firstChunk)
	if store.limits.MaxBytes > 0 && buffered > store.limits.MaxBytes {
		store.bytes.Add(-firstChunk)
		store.sets.Add(-1)
		store.Metrics.RejectedFull.Add(1)
		err = fmt.Errorf("%w: %d buffered bytes", ErrStoreFull, store.limits.MaxBytes)
		return
	}
	return
}

// Removes every set whose last update is older than deadline.
// Runs under the same bucket locks as Insert, so a set is either completed or expired, never both.
func (store *Store) Sweep(now time.Time, deadline time.Duration) (expired []Expired) {
	for _, b := range store.buckets {
		b.mu.Lock()
		for id, set := range b.sets {
			if now.Sub(set.LastUpdate) <= deadline {
				continue
			}
			delete(b.sets, id)
			store.sets.Add(-1)
			store.bytes.Add(-set.size)

			expired = append(expired, Expired{
				ID:       id,
				Received: set.count,
				Total:    set.Total,
				Age:      now.Sub(set.FirstSeen),
			})
		}
		b.mu.Unlock()
	}
	store.Metrics.Expired.Add(uint64(len(expired)))
	return
}

// Number of incomplete sets currently held
func (store *Store) Len() (count int) {
	count = int(store.sets.Load())
	return
}

// Bytes of chunk payload currently held
func (store *Store) Bytes() (size int64) {
	size = store.bytes.Load()
	return
}
