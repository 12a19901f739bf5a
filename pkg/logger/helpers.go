package logger

import (
	"time"

	"github.com/rs/zerolog"
)

// LogPage logs the outcome of one search page
func LogPage(l Logger, page int, received, kept, total int) {
	l.WithFields(map[string]interface{}{
		"page":     page,
		"received": received,
		"kept":     kept,
		"total":    total,
	}).Debug("Page filtered")
}

// LogRateLimit logs the API quota reported on a response.
// remaining is -1 when the header was absent.
func LogRateLimit(l Logger, remaining int, reset time.Time) {
	if remaining < 0 {
		return
	}

	fields := map[string]interface{}{
		"remaining": remaining,
	}
	if !reset.IsZero() {
		fields["reset_at"] = reset
		fields["reset_in"] = time.Until(reset).Round(time.Second)
	}

	if remaining == 0 {
		l.WarnWithFields("Search quota exhausted", fields)
		return
	}
	l.DebugWithFields("Search quota", fields)
}

// LogCollectProgress logs how far the collector is from its target
func LogCollectProgress(l Logger, collected, target int) {
	percentage := 0.0
	if target > 0 {
		percentage = float64(collected) / float64(target) * 100
		if percentage > 100 {
			percentage = 100
		}
	}

	l.WithFields(map[string]interface{}{
		"collected":  collected,
		"target":     target,
		"percentage": percentage,
	}).Info("Collection progress")
}

// NewNopLogger returns a logger that discards everything
func NewNopLogger() Logger {
	nop := zerolog.Nop()
	return &zerologLogger{
		logger: &nop,
		fields: make(map[string]interface{}),
	}
}
