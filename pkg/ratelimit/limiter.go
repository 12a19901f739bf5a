package ratelimit

import (
	"context"
	"sync"
	"time"

	"geoscraper/pkg/config"
)

// Limiter gates outgoing requests
type Limiter interface {
	// Allow reports whether a request may proceed now, and records it if so
	Allow() bool
	// Wait blocks until a request may proceed or ctx is done
	Wait(ctx context.Context) error
	// Reset forgets all recorded requests
	Reset()
}

// Interval enforces a minimum spacing between consecutive requests.
// The first request is never delayed.
type Interval struct {
	interval time.Duration
	clock    Clock
	last     time.Time
	mu       sync.Mutex
}

// NewInterval creates an interval gate on the wall clock
func NewInterval(interval time.Duration) *Interval {
	return NewIntervalWithClock(interval, SystemClock{})
}

// NewIntervalWithClock creates an interval gate on the given clock
func NewIntervalWithClock(interval time.Duration, clock Clock) *Interval {
	return &Interval{interval: interval, clock: clock}
}

// Allow grants a request if the interval has elapsed since the last one
func (iv *Interval) Allow() bool {
	iv.mu.Lock()
	defer iv.mu.Unlock()

	now := iv.clock.Now()
	if iv.pending(now) > 0 {
		return false
	}
	iv.last = now
	return true
}

// Wait sleeps out the remainder of the interval
func (iv *Interval) Wait(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if iv.Allow() {
			return nil
		}

		iv.mu.Lock()
		d := iv.pending(iv.clock.Now())
		iv.mu.Unlock()

		if err := iv.clock.Sleep(ctx, d); err != nil {
			return err
		}
	}
}

// restamp moves the last grant to now
func (iv *Interval) restamp() {
	iv.mu.Lock()
	defer iv.mu.Unlock()

	if !iv.last.IsZero() {
		iv.last = iv.clock.Now()
	}
}

// Reset lets the next request through immediately
func (iv *Interval) Reset() {
	iv.mu.Lock()
	defer iv.mu.Unlock()

	iv.last = time.Time{}
}

func (iv *Interval) pending(now time.Time) time.Duration {
	if iv.last.IsZero() {
		return 0
	}
	return iv.last.Add(iv.interval).Sub(now)
}

// SlidingWindow allows at most maxRequests within any windowSize span
type SlidingWindow struct {
	windowSize  time.Duration
	maxRequests int
	clock       Clock
	requests    []time.Time
	mu          sync.Mutex
}

// NewSlidingWindow creates a sliding window limiter on the wall clock
func NewSlidingWindow(maxRequests int, windowSize time.Duration) *SlidingWindow {
	return NewSlidingWindowWithClock(maxRequests, windowSize, SystemClock{})
}

// NewSlidingWindowWithClock creates a sliding window limiter on the given clock.
// A budget below one is raised to one.
func NewSlidingWindowWithClock(maxRequests int, windowSize time.Duration, clock Clock) *SlidingWindow {
	if maxRequests < 1 {
		maxRequests = 1
	}
	return &SlidingWindow{
		windowSize:  windowSize,
		maxRequests: maxRequests,
		clock:       clock,
		requests:    make([]time.Time, 0, maxRequests),
	}
}

// Allow records the request if the window has room
func (sw *SlidingWindow) Allow() bool {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	now := sw.clock.Now()
	sw.evict(now)

	if len(sw.requests) < sw.maxRequests {
		sw.requests = append(sw.requests, now)
		return true
	}
	return false
}

// Wait sleeps until the oldest request leaves the window
func (sw *SlidingWindow) Wait(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if sw.Allow() {
			return nil
		}

		sw.mu.Lock()
		d := sw.requests[0].Add(sw.windowSize).Sub(sw.clock.Now())
		sw.mu.Unlock()

		if err := sw.clock.Sleep(ctx, d); err != nil {
			return err
		}
	}
}

// restamp moves the newest recorded request to now
func (sw *SlidingWindow) restamp() {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	if n := len(sw.requests); n > 0 {
		sw.requests[n-1] = sw.clock.Now()
	}
}

// Reset clears all recorded requests
func (sw *SlidingWindow) Reset() {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	sw.requests = sw.requests[:0]
}

// evict drops requests that are no longer inside the window
func (sw *SlidingWindow) evict(now time.Time) {
	cutoff := now.Add(-sw.windowSize)

	i := 0
	for i < len(sw.requests) && !sw.requests[i].After(cutoff) {
		i++
	}
	if i > 0 {
		n := copy(sw.requests, sw.requests[i:])
		sw.requests = sw.requests[:n]
	}
}

// Chain requires every limiter to grant the request
type Chain []Limiter

// restamper is implemented by gates that can move their latest grant forward
type restamper interface {
	restamp()
}

// Allow asks each limiter in order and stops at the first refusal
func (c Chain) Allow() bool {
	for _, l := range c {
		if !l.Allow() {
			return false
		}
	}
	return true
}

// Wait waits on each limiter in order. Once the last one grants, the
// earlier ones are restamped so their spacing counts from the actual grant
// rather than from before a later limiter stalled.
func (c Chain) Wait(ctx context.Context) error {
	for _, l := range c {
		if err := l.Wait(ctx); err != nil {
			return err
		}
	}
	for i := 0; i < len(c)-1; i++ {
		if r, ok := c[i].(restamper); ok {
			r.restamp()
		}
	}
	return nil
}

func (c Chain) Reset() {
	for _, l := range c {
		l.Reset()
	}
}

// Nop never delays
type Nop struct{}

func (Nop) Allow() bool { return true }

func (Nop) Wait(ctx context.Context) error { return ctx.Err() }

func (Nop) Reset() {}

// FromConfig builds the limiter described by cfg. A zero interval and a
// zero window budget yield Nop.
func FromConfig(cfg config.RateLimitConfig, clock Clock) Limiter {
	if clock == nil {
		clock = SystemClock{}
	}

	var chain Chain
	if cfg.RequestInterval > 0 {
		chain = append(chain, NewIntervalWithClock(cfg.RequestInterval, clock))
	}
	if cfg.RequestsPerWindow > 0 && cfg.Window > 0 {
		chain = append(chain, NewSlidingWindowWithClock(cfg.RequestsPerWindow, cfg.Window, clock))
	}

	switch len(chain) {
	case 0:
		return Nop{}
	case 1:
		return chain[0]
	default:
		return chain
	}
}
