package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Memory is a sliding-window limiter holding every client's request times in process.
// Entries are only removed by Prune.
type Memory struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	opts     options
}

func NewMemory(opts ...Option) *Memory {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Memory{
		requests: make(map[string][]time.Time),
		opts:     o,
	}
}

// Allow implements Limiter.
func (m *Memory) Allow(_ context.Context, clientID string) (bool, error) {
	now := m.opts.now()
	windowStart := now.Add(-m.opts.window)

	m.mu.Lock()
	defer m.mu.Unlock()

	kept := trim(m.requests[clientID], windowStart)
	if len(kept) >= m.opts.max {
		m.requests[clientID] = kept
		return false, nil
	}
	m.requests[clientID] = append(kept, now)
	return true, nil
}

func (m *Memory) Max() int { return m.opts.max }

func (m *Memory) Window() time.Duration { return m.opts.window }

// Prune removes clients with no request inside the window ending at now.
func (m *Memory) Prune(now time.Time) int {
	windowStart := now.Add(-m.opts.window)

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, times := range m.requests {
		if len(trim(times, windowStart)) == 0 {
			delete(m.requests, id)
			removed++
		}
	}
	return removed
}

// Run prunes every interval until ctx is done.
func (m *Memory) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Prune(m.opts.now())
		}
	}
}

// Clients reports how many client entries are held.
func (m *Memory) Clients() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// trim drops timestamps not strictly after windowStart. Times are in insertion order.
func trim(times []time.Time, windowStart time.Time) []time.Time {
	i := 0
	for i < len(times) && !times[i].After(windowStart) {
		i++
	}
	if i == 0 {
		return times
	}
	return append(times[:0:0], times[i:]...)
}

var _ Limiter = (*Memory)(nil)
