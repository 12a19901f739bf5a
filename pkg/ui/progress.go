package ui

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

const (
	ProgressBar   = "━"
	ProgressEmpty = "─"
	barWidth      = 20
)

// StatusTracker renders a single progress line while posts are collected
type StatusTracker struct {
	mu        sync.Mutex
	query     string
	target    int
	collected int
	seen      int
	pages     int
	startTime time.Time
	verbose   bool
}

// NewStatusTracker creates a tracker for a run aiming at target posts.
// In verbose mode every page gets its own line instead of redrawing one.
func NewStatusTracker(query string, target int, verbose bool) *StatusTracker {
	return &StatusTracker{
		query:     query,
		target:    target,
		startTime: time.Now(),
		verbose:   verbose,
	}
}

// PageDone records a filtered page and redraws the status line
func (st *StatusTracker) PageDone(page, seen, collected int) {
	st.mu.Lock()
	st.pages = page
	st.seen = seen
	st.collected = collected
	line := st.line()
	st.mu.Unlock()

	if st.verbose {
		emit(false, "%s\n", line)
		return
	}
	emit(false, "\r%s\r%s", strings.Repeat(" ", 100), line)
}

// Bar returns the progress bar towards the target
func (st *StatusTracker) Bar() string {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.bar()
}

func (st *StatusTracker) bar() string {
	filled := 0
	if st.target > 0 {
		filled = st.collected * barWidth / st.target
	}
	if filled > barWidth {
		filled = barWidth
	}
	return strings.Repeat(ProgressBar, filled) + strings.Repeat(ProgressEmpty, barWidth-filled)
}

// HitRate returns the share of seen posts that carried geo data, in percent
func (st *StatusTracker) HitRate() float64 {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.hitRate()
}

func (st *StatusTracker) hitRate() float64 {
	if st.seen == 0 {
		return 0
	}
	return float64(st.collected) / float64(st.seen) * 100
}

func (st *StatusTracker) line() string {
	return fmt.Sprintf("%s [%s] %d/%d • page %d • %d seen • %.1f%% geo",
		Cyan("[COLLECTING]"),
		st.bar(),
		st.collected,
		st.target,
		st.pages,
		st.seen,
		st.hitRate(),
	)
}

// Complete prints the run summary
func (st *StatusTracker) Complete(outputPath string) {
	st.mu.Lock()
	defer st.mu.Unlock()

	elapsed := time.Since(st.startTime)
	emit(false, "\n\n%s Collected %d geo-tagged posts for %q\n", Green("✓"), st.collected, st.query)
	emit(false, "  %s %d pages, %d posts seen in %s\n", Dim("•"), st.pages, st.seen, FormatDuration(elapsed))
	emit(false, "  %s written to %s\n", Dim("•"), outputPath)
}

// FormatDuration formats a duration in a human-readable way
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
	}
}
