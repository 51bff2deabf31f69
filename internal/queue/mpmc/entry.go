// Multi-producer Multi-Consumer lock-free ring buffer queue with power-of-two capacity
package mpmc

import (
	"context"
	"fmt"
	"gelfmover/internal/atomics"
	"gelfmover/internal/global"
	"runtime"
)

// Creates a new queue. Capacity is rounded up to the next power of two.
func New[T any](namespace []string, capacity int) (new *Queue[T], err error) {
	if capacity < 2 {
		err = fmt.Errorf("capacity must be greater than or equal to 2")
		return
	}
	size := uint64(1)
	for size < uint64(capacity) {
		size <<= 1
	}

	buf := make([]cell[T], size)
	for i := uint64(0); i < size; i++ {
		buf[i].seq.Store(i)
	}

	new = &Queue[T]{
		Namespace: append(append([]string(nil), namespace...), global.NSQueue),
		Size:      int(size),
		mask:      size - 1,
		buf:       buf,
		notEmpty:  make(chan struct{}, 1),
	}
	return
}

// Attempts to write an element (non success = queue full).
// Never blocks.
func (queue *Queue[T]) Push(value T) (success bool) {
	var pos uint64
	var slot *cell[T]

	for {
		pos = queue.tail.Load()
		slot = &queue.buf[pos&queue.mask]
		seq := slot.seq.Load()

		if seq == pos {
			if queue.tail.CompareAndSwap(pos, pos+1) {
				break
			}
			queue.Metrics.PushCASRetries.Add(1)
		} else if seq < pos {
			queue.Metrics.PushFull.Add(1)
			return
		} else {
			runtime.Gosched()
		}
	}

	slot.data = value
	slot.seq.Store(pos + 1)
	queue.Metrics.PushSuccess.Add(1)
	queue.Metrics.Depth.Add(1)

	select {
	case queue.notEmpty <- struct{}{}:
	default:
	}

	success = true
	return
}

// Reads an element, waiting while the queue is empty.
// Returns false only when ctx is cancelled.
func (queue *Queue[T]) Pop(ctx context.Context) (out T, success bool) {
	for {
		pos := queue.head.Load()
		slot := &queue.buf[pos&queue.mask]
		seq := slot.seq.Load()

		if seq == pos+1 {
			if queue.head.CompareAndSwap(pos, pos+1) {
				out = slot.data
				var zero T
				slot.data = zero
				slot.seq.Store(pos + queue.mask + 1)

				queue.Metrics.PopSuccess.Add(1)
				atomics.Subtract(&queue.Metrics.Depth, 1)

				// Pass the wakeup on if more items remain
				if queue.tail.Load() != queue.head.Load() {
					select {
					case queue.notEmpty <- struct{}{}:
					default:
					}
				}

				success = true
				return
			}
			queue.Metrics.PopCASRetries.Add(1)
			continue
		}

		if seq < pos+1 {
			select {
			case <-ctx.Done():
				return
			case <-queue.notEmpty:
			}
			continue
		}

		// another consumer ahead
		runtime.Gosched()
	}
}

// Current number of queued items
func (queue *Queue[T]) Len() (length int) {
	length = int(queue.Metrics.Depth.Load())
	return
}
