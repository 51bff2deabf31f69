package dispatcher

import (
	"gelfmover/internal/random"
	"math"
	"time"
)

// Delay before the next attempt after `attempts` failed calls
func (dispatcher *Dispatcher) backoff(attempts int) (delay time.Duration) {
	config := dispatcher.config

	exp := math.Pow(config.Multiplier, float64(max(attempts-1, 0)))
	scaled := float64(config.InitialBackoff) * exp
	if scaled > float64(config.MaxBackoff) || math.IsInf(scaled, 0) {
		scaled = float64(config.MaxBackoff)
	}
	delay = time.Duration(scaled)

	if config.Jitter > 0 && delay > 0 {
		spread := int64(float64(delay) * config.Jitter)
		offset, err := random.NumberInRange(-spread, spread)
		if err == nil {
			delay += time.Duration(offset)
		}
	}
	delay = min(max(delay, 0), config.MaxBackoff)
	return
}
