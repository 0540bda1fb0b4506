package irc

import (
	"context"

	"golang.org/x/time/rate"
)

// rateLimiter throttles outbound command writes with a token bucket, so a
// burst of queued commands (a script joining many channels, a flood of
// replies) can't trip a server's flood protection.
//
// A zero rateLimiter (as produced by newRateLimiter with a non-positive
// rate) never blocks: Acquire returns immediately. This is how rate
// limiting is disabled for tests and for callers who opt out via
// SessionConfig.
type rateLimiter struct {
	limiter *rate.Limiter
}

// newRateLimiter builds a limiter that permits eventsPerSecond steady-state
// sends, with an initial burst allowance of burst tokens. eventsPerSecond
// <= 0 disables limiting entirely.
func newRateLimiter(eventsPerSecond float64, burst int) *rateLimiter {
	if eventsPerSecond <= 0 {
		return &rateLimiter{}
	}
	return &rateLimiter{limiter: rate.NewLimiter(rate.Limit(eventsPerSecond), burst)}
}

// Acquire blocks until a token is available for one outbound line, or
// until ctx is cancelled.
func (r *rateLimiter) Acquire(ctx context.Context) error {
	if r == nil || r.limiter == nil {
		return nil
	}
	return r.limiter.Wait(ctx)
}
