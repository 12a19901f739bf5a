// Package ratelimit paces requests to the search endpoint.
//
// Interval enforces a fixed gap between requests (2.1s by default, which
// keeps a single client under 450 requests per 15 minutes). SlidingWindow
// enforces the window budget itself. Chain combines them and Nop disables
// pacing entirely.
//
// Every limiter reads time through a Clock, so tests can substitute a fake
// one and never sleep:
//
//	limiter := ratelimit.FromConfig(cfg.RateLimit, ratelimit.SystemClock{})
//	if err := limiter.Wait(ctx); err != nil {
//	    return err
//	}
package ratelimit
