// Package leaktest checks that components release their goroutines on shutdown.
package leaktest

import (
	"runtime"
	"testing"
	"time"
)

// DefaultSettleTimeout bounds how long Check waits for goroutines to exit
const DefaultSettleTimeout = time.Second

const pollInterval = 10 * time.Millisecond

// GoroutineChecker compares the goroutine count before and after a component's lifecycle
type GoroutineChecker struct {
	before  int
	settle  time.Duration
	t       testing.TB
	counter func() int
}

// NewGoroutineChecker records the current goroutine count
func NewGoroutineChecker(t testing.TB) *GoroutineChecker {
	t.Helper()
	g := &GoroutineChecker{settle: DefaultSettleTimeout, t: t, counter: runtime.NumGoroutine}
	g.before = g.stableCount()
	return g
}

// WithSettleTimeout changes how long Check waits for stragglers
func (g *GoroutineChecker) WithSettleTimeout(d time.Duration) *GoroutineChecker {
	g.settle = d
	return g
}

// Check fails the test when more than tolerance goroutines are still running
// once the settle timeout has passed. It returns as soon as the count is back
// within tolerance.
func (g *GoroutineChecker) Check(tolerance int) {
	g.t.Helper()

	deadline := time.Now().Add(g.settle)
	after := g.counter()
	for after-g.before > tolerance && time.Now().Before(deadline) {
		runtime.Gosched()
		time.Sleep(pollInterval)
		after = g.counter()
	}

	if leaked := after - g.before; leaked > tolerance {
		g.t.Errorf("Potential goroutine leak: before=%d, after=%d, leaked=%d (tolerance=%d)",
			g.before, after, leaked, tolerance)
	}
}

// stableCount lets goroutines from earlier tests finish before the baseline is taken
func (g *GoroutineChecker) stableCount() int {
	runtime.Gosched()
	prev := g.counter()
	for i := 0; i < 5; i++ {
		time.Sleep(pollInterval)
		cur := g.counter()
		if cur == prev {
			return cur
		}
		prev = cur
	}
	return prev
}
