package ratelimit

import (
	"sync"
	"time"
)

// Limiter enforces sliding-window request limits on the administrative
// trigger endpoints (manual billing runs, cleanup runs).
type Limiter struct {
	enabled bool
	windows []*window
	mu      sync.Mutex
}

type window struct {
	span  time.Duration
	limit int
	hits  []time.Time
}

// NewLimiter creates a limiter with per-minute, per-hour and per-day
// limits. A limit of zero disables that window.
func NewLimiter(perMinute, perHour, perDay int, enabled bool) *Limiter {
	l := &Limiter{enabled: enabled}
	for _, w := range []struct {
		span  time.Duration
		limit int
	}{
		{time.Minute, perMinute},
		{time.Hour, perHour},
		{24 * time.Hour, perDay},
	} {
		if w.limit > 0 {
			l.windows = append(l.windows, &window{span: w.span, limit: w.limit})
		}
	}
	return l
}

// Allow reports whether a request may proceed, recording it if so.
func (l *Limiter) Allow() bool {
	if !l.enabled {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	for _, w := range l.windows {
		w.prune(now)
		if len(w.hits) >= w.limit {
			return false
		}
	}
	for _, w := range l.windows {
		w.hits = append(w.hits, now)
	}
	return true
}

func (w *window) prune(now time.Time) {
	cutoff := now.Add(-w.span)
	kept := w.hits[:0]
	for _, t := range w.hits {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	w.hits = kept
}

// Stats reports current usage per window, keyed by window span.
func (l *Limiter) Stats() map[string]interface{} {
	stats := map[string]interface{}{"enabled": l.enabled}
	if !l.enabled {
		return stats
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	for _, w := range l.windows {
		w.prune(now)
		stats[w.span.String()] = map[string]int{
			"used":      len(w.hits),
			"limit":     w.limit,
			"remaining": w.limit - len(w.hits),
		}
	}
	return stats
}

// Reset clears all tracked requests (useful for testing)
func (l *Limiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, w := range l.windows {
		w.hits = nil
	}
}
