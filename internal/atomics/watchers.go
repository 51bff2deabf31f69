// Helper functions that deal with atomic variables and their values
package atomics

import (
	"sync/atomic"
	"time"
)

// Consecutive zero observations required before a counter is considered settled
const settleStreak = 3

// Polls value until it reads 0 settleStreak times in a row or timeout expires.
// Poll interval starts small and doubles up to one second.
func WaitUntilZero(value *atomic.Uint64, timeout time.Duration) (reachedZero bool, lastValue uint64) {
	const maxInterval = 1 * time.Second
	interval := 25 * time.Millisecond

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	streak := 0
	for {
		lastValue = value.Load()
		if lastValue == 0 {
			streak++
		} else {
			streak = 0
		}
		if streak >= settleStreak {
			reachedZero = true
			return
		}

		select {
		case <-deadline.C:
			// One final read so callers get the freshest value
			lastValue = value.Load()
			reachedZero = false
			return
		case <-time.After(interval):
		}

		interval = min(interval*2, maxInterval)
	}
}
