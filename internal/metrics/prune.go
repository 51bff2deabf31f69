package metrics

import "time"

// Drops slices that started more than maxAge before currentTime
func (registry *Registry) Prune(currentTime time.Time, maxAge time.Duration) {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	keepFrom := registry.locate(currentTime.Add(-maxAge))
	if keepFrom == 0 {
		return
	}
	remaining := copy(registry.slices, registry.slices[keepFrom:])
	clear(registry.slices[remaining:])
	registry.slices = registry.slices[:remaining]
}
