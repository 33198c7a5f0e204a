package ratelimit

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	window int64
	count  int
}

// MemoryLimiter implements a fixed-window in-memory rate limiter.
type MemoryLimiter struct {
	mu       sync.Mutex
	counters map[string]*memoryEntry
	lastGC   int64
}

// NewMemoryLimiter constructs a MemoryLimiter.
func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{
		counters: make(map[string]*memoryEntry),
	}
}

// windowIndex returns the window number containing now and its end time.
func windowIndex(now time.Time, window time.Duration) (int64, time.Time) {
	if window <= 0 {
		window = DefaultWindow
	}
	idx := now.UnixNano() / int64(window)
	reset := time.Unix(0, (idx+1)*int64(window)).UTC()
	return idx, reset
}

// Allow checks whether the request fits in the current window.
func (l *MemoryLimiter) Allow(_ context.Context, key string, limit int, window time.Duration, now time.Time) (Result, error) {
	if limit <= 0 || key == "" {
		return Result{Allowed: true}, nil
	}
	idx, reset := windowIndex(now, window)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.collect(idx)

	entry := l.counters[key]
	if entry == nil {
		entry = &memoryEntry{window: idx}
		l.counters[key] = entry
	}
	if entry.window != idx {
		entry.window = idx
		entry.count = 0
	}
	if entry.count >= limit {
		return Result{Allowed: false, Remaining: 0, Reset: reset}, nil
	}
	entry.count++
	return Result{Allowed: true, Remaining: limit - entry.count, Reset: reset}, nil
}

// collect drops counters from past windows once per window.
func (l *MemoryLimiter) collect(idx int64) {
	if l.lastGC == idx {
		return
	}
	l.lastGC = idx
	for key, entry := range l.counters {
		if entry.window < idx {
			delete(l.counters, key)
		}
	}
}
