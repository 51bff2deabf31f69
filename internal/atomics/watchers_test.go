package atomics

import (
	"sync/atomic"
	"testing"
	"time"
)

// Poll instants are 0, 25ms, 75ms, 175ms, 375ms, 775ms...
func TestWaitUntilZero(t *testing.T) {
	tests := []struct {
		name          string
		initial       uint64
		mutate        func(a *atomic.Uint64)
		timeout       time.Duration
		expectReached bool
		expectLast    uint64
	}{
		{
			name:          "already zero",
			initial:       0,
			timeout:       500 * time.Millisecond,
			expectReached: true,
		},
		{
			name:    "drains to zero",
			initial: 5,
			mutate: func(a *atomic.Uint64) {
				go func() {
					for range 5 {
						time.Sleep(20 * time.Millisecond)
						a.Add(^uint64(0))
					}
				}()
			},
			timeout:       3 * time.Second,
			expectReached: true,
		},
		{
			name:          "never reaches zero",
			initial:       3,
			timeout:       200 * time.Millisecond,
			expectReached: false,
			expectLast:    3,
		},
		{
			name:    "brief zero does not count",
			initial: 0,
			mutate: func(a *atomic.Uint64) {
				go func() {
					time.Sleep(40 * time.Millisecond)
					a.Store(2)
				}()
			},
			timeout:       400 * time.Millisecond,
			expectReached: false,
			expectLast:    2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a atomic.Uint64
			a.Store(tt.initial)
			if tt.mutate != nil {
				tt.mutate(&a)
			}

			reached, last := WaitUntilZero(&a, tt.timeout)

			if reached != tt.expectReached {
				t.Fatalf("expected reached=%v, got %v (last=%d)", tt.expectReached, reached, last)
			}
			if last != tt.expectLast {
				t.Fatalf("expected last value %d, got %d", tt.expectLast, last)
			}
		})
	}
}
