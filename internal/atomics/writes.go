package atomics

import (
	"sync/atomic"
)

// Subtracts value from source, clamping at zero instead of wrapping.
// Returns the value stored after the subtraction.
func Subtract(source *atomic.Uint64, value uint64) (remaining uint64) {
	for {
		current := source.Load()
		if value >= current {
			remaining = 0
		} else {
			remaining = current - value
		}
		if current == remaining || source.CompareAndSwap(current, remaining) {
			return
		}
	}
}

// Raises target to value if value is larger. Returns true when target changed.
func StoreMax(target *atomic.Uint64, value uint64) (raised bool) {
	for {
		current := target.Load()
		if value <= current {
			return
		}
		if target.CompareAndSwap(current, value) {
			raised = true
			return
		}
	}
}
