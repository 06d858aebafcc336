package extract

import (
	"math/rand"
	"time"
)

// Rate limiter defaults, in line with a polite scrape of a throttling site.
const (
	DefaultBaseSleep = 1 * time.Second
	DefaultMinSleep  = 1 * time.Second
	DefaultMaxSleep  = 600 * time.Second
)

// RateLimiter adapts the inter-request delay to observed fetch outcomes:
// multiplicative backoff on 429s, staged speed-up on success streaks.
// It computes delays only; the pipeline performs the actual waiting, so the
// limiter stays cancellation-free. One limiter belongs to exactly one run.
type RateLimiter struct {
	baseSleep time.Duration
	minSleep  time.Duration
	maxSleep  time.Duration

	consecutiveRateLimited int
	consecutiveSuccesses   int
}

// NewRateLimiter returns a limiter with the default sleep bounds.
func NewRateLimiter() *RateLimiter {
	return NewRateLimiterWith(DefaultBaseSleep, DefaultMinSleep, DefaultMaxSleep)
}

// NewRateLimiterWith returns a limiter with explicit bounds. The base sleep
// is clamped into [min, max] so the invariant min <= base <= max holds from
// the start.
func NewRateLimiterWith(base, min, max time.Duration) *RateLimiter {
	if min <= 0 {
		min = DefaultMinSleep
	}
	if max < min {
		max = min
	}
	if base < min {
		base = min
	}
	if base > max {
		base = max
	}
	return &RateLimiter{baseSleep: base, minSleep: min, maxSleep: max}
}

// NextDelay returns the jittered delay to wait before the next request.
// The jitter avoids synchronized request timing; state is unchanged.
func (rl *RateLimiter) NextDelay() time.Duration {
	jitter := 0.8 + rand.Float64()*0.4
	return time.Duration(float64(rl.baseSleep) * jitter)
}

// OnSuccess records a successful fetch and speeds the limiter up. Longer
// success streaks earn a more aggressive reduction; the base sleep never
// drops below the minimum and never increases here.
func (rl *RateLimiter) OnSuccess() {
	rl.consecutiveSuccesses++
	rl.consecutiveRateLimited = 0

	var factor float64
	switch {
	case rl.consecutiveSuccesses >= 5:
		factor = 0.5
	case rl.consecutiveSuccesses >= 3:
		factor = 0.7
	default:
		factor = 0.9
	}

	candidate := time.Duration(float64(rl.baseSleep) * factor)
	if candidate < rl.minSleep {
		candidate = rl.minSleep
	}
	if candidate < rl.baseSleep {
		rl.baseSleep = candidate
	}
}

// OnRateLimited records a 429, backs the base sleep off by 1.5x (capped at
// the maximum) and returns how long the caller must wait before retrying
// the same page.
func (rl *RateLimiter) OnRateLimited() time.Duration {
	rl.consecutiveSuccesses = 0
	rl.consecutiveRateLimited++

	backedOff := time.Duration(float64(rl.baseSleep) * 1.5)
	if backedOff > rl.maxSleep {
		backedOff = rl.maxSleep
	}
	rl.baseSleep = backedOff

	return time.Duration(float64(rl.baseSleep) * (1.0 + rand.Float64()*0.5))
}

// OnTransientError records a transport or HTTP-status failure and returns a
// one-off wait before moving on. The base sleep itself is left unchanged.
func (rl *RateLimiter) OnTransientError() time.Duration {
	rl.consecutiveSuccesses = 0
	return time.Duration(float64(rl.baseSleep) * 1.5)
}

// BaseSleep exposes the current base sleep for logging and tests.
func (rl *RateLimiter) BaseSleep() time.Duration {
	return rl.baseSleep
}

// ConsecutiveRateLimited exposes the current 429 streak length.
func (rl *RateLimiter) ConsecutiveRateLimited() int {
	return rl.consecutiveRateLimited
}

// ConsecutiveSuccesses exposes the current success streak length.
func (rl *RateLimiter) ConsecutiveSuccesses() int {
	return rl.consecutiveSuccesses
}
