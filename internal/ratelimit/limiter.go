package ratelimit

import (
	"context"
	"time"
)

const (
	DefaultWindow = 60 * time.Second
	DefaultMax    = 10
)

// Limiter decides whether a client may make another request inside the trailing window.
type Limiter interface {
	Allow(ctx context.Context, clientID string) (bool, error)
	Max() int
	Window() time.Duration
}

// Option is a functional option shared by every limiter backend.
type Option func(*options)

type options struct {
	window time.Duration
	max    int
	now    func() time.Time
}

func defaultOptions() options {
	return options{window: DefaultWindow, max: DefaultMax, now: time.Now}
}

// WithWindow sets the trailing window length.
func WithWindow(window time.Duration) Option {
	return func(o *options) {
		if window > 0 {
			o.window = window
		}
	}
}

// WithMax sets how many requests a client may make per window.
func WithMax(max int) Option {
	return func(o *options) {
		if max > 0 {
			o.max = max
		}
	}
}

// WithClock replaces time.Now, used by tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}
