package irc

import (
	"context"
	"testing"
	"time"
)

// TestAggregatorSweepExpiresStaleRequests exercises runAggregatorSweep
// directly: an aggregator whose deadline has already elapsed must be failed
// with ErrTimeout and removed from the pending table, even though no
// terminator numeric ever arrives.
func TestAggregatorSweepExpiresStaleRequests(t *testing.T) {
	c := NewClient(SessionConfig{Nick: "nick"})

	agg := newWhoisAggregator("target")
	agg.expiresAt = time.Now().Add(-time.Second)

	key := whoisKey("target")
	c.mu.Lock()
	c.aggregators[key] = agg
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 1500*time.Millisecond)
	defer cancel()
	go c.runAggregatorSweep(ctx)

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 1500*time.Millisecond)
	defer waitCancel()
	_, err := agg.wait(waitCtx)
	if err != ErrTimeout {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}

	c.mu.Lock()
	_, stillPending := c.aggregators[key]
	c.mu.Unlock()
	if stillPending {
		t.Fatalf("expected aggregator to be removed from pending table")
	}
}
