package ratelimiter

import (
	"sync"
	"time"
)

type fixedWindow struct {
	mu      sync.Mutex
	windows map[string]*window
	limit   int
	frame   time.Duration
	done    chan struct{}
}

type window struct {
	count   int
	resetAt time.Time
}

// NewFixedWindow allows up to limit requests per source within each frame.
// Counters reset at frame boundaries; stale sources are swept periodically.
func NewFixedWindow(limit int, frame time.Duration) Limiter {
	rl := &fixedWindow{
		windows: make(map[string]*window),
		limit:   limit,
		frame:   frame,
		done:    make(chan struct{}),
	}
	go rl.sweep()
	return rl
}

func (rl *fixedWindow) Allow(source string) (bool, time.Duration) {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.windows[source]
	if !ok || !now.Before(w.resetAt) {
		rl.windows[source] = &window{count: 1, resetAt: now.Add(rl.frame)}
		return true, 0
	}

	if w.count >= rl.limit {
		return false, time.Until(w.resetAt)
	}

	w.count++
	return true, 0
}

func (rl *fixedWindow) sweep() {
	ticker := time.NewTicker(rl.frame)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := time.Now()
			rl.mu.Lock()
			for source, w := range rl.windows {
				if now.After(w.resetAt) {
					delete(rl.windows, source)
				}
			}
			rl.mu.Unlock()
		case <-rl.done:
			return
		}
	}
}

func (rl *fixedWindow) Close() {
	close(rl.done)
}
