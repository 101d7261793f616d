package worker

import (
	"math"
	"math/rand"
	"time"
)

// RetryBackoff returns the delay before re-enqueueing a failed email.
// attempt=0 => 2s, attempt=1 => 4s, attempt=2 => 8s, capped at 5m.
func RetryBackoff(attempt int) time.Duration {
	base := 2 * time.Second
	capDelay := 5 * time.Minute

	// 2s * 2^8 already clears the cap, so clamp the exponent before the
	// multiply rather than risk overflowing the Duration
	if attempt > 8 {
		attempt = 8
	}

	delay := time.Duration(float64(base) * math.Pow(2, float64(attempt)))

	if delay > capDelay {
		delay = capDelay
	}

	// jitter so a burst of failures does not retry in lockstep
	delay += time.Duration(rand.Intn(250)) * time.Millisecond
	return delay
}
