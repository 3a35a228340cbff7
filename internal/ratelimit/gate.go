// Package ratelimit implements the admission gate that bounds how often one
// caller may trigger an audit. It keeps a sliding-window log: every admitted
// request is recorded with its timestamp and a new request is admitted only
// while fewer than limit entries fall inside the trailing window.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrStoreUnavailable is returned by a fail-closed Gate when the counter
// store cannot be read or written.
var ErrStoreUnavailable = errors.New("counter store unavailable")

// CounterStore persists admission timestamps per (identity, endpoint) pair.
type CounterStore interface {
	Count(ctx context.Context, identity, endpoint string, since time.Time) (int, error)
	Record(ctx context.Context, identity, endpoint string, at time.Time) error
}

// Decision is the gate's answer for one request.
type Decision struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// Gate answers allow/deny questions against a CounterStore.
//
// Count and Record are two separate store calls, so concurrent bursts from
// one identity can exceed the limit by a small margin.
type Gate struct {
	store    CounterStore
	logger   *slog.Logger
	failOpen bool
	now      func() time.Time
}

// Option configures a Gate.
type Option func(*Gate)

// WithFailOpen admits requests when the counter store errors instead of
// rejecting them.
func WithFailOpen(failOpen bool) Option {
	return func(g *Gate) { g.failOpen = failOpen }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(g *Gate) { g.now = now }
}

// NewGate returns a fail-closed Gate unless WithFailOpen(true) is given.
func NewGate(store CounterStore, logger *slog.Logger, opts ...Option) *Gate {
	g := &Gate{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Check counts prior admissions for identity on endpoint within the trailing
// window and, if fewer than limit, records a new one.
//
// ResetAt is now+window for both outcomes. For a denial this overstates the
// wait when the oldest entry in the window is about to expire.
func (g *Gate) Check(ctx context.Context, identity, endpoint string, limit int, window time.Duration) (Decision, error) {
	now := g.now()
	resetAt := now.Add(window)

	count, err := g.store.Count(ctx, identity, endpoint, now.Add(-window))
	if err != nil {
		return g.storeFailure(ctx, resetAt, err)
	}

	if count >= limit {
		return Decision{Allowed: false, Remaining: 0, ResetAt: resetAt}, nil
	}

	if err := g.store.Record(ctx, identity, endpoint, now); err != nil {
		return g.storeFailure(ctx, resetAt, err)
	}

	return Decision{Allowed: true, Remaining: limit - count - 1, ResetAt: resetAt}, nil
}

func (g *Gate) storeFailure(ctx context.Context, resetAt time.Time, err error) (Decision, error) {
	g.logger.ErrorContext(ctx, "counter store unavailable",
		"error", err,
		"fail_open", g.failOpen,
	)
	if g.failOpen {
		return Decision{Allowed: true, Remaining: 0, ResetAt: resetAt}, nil
	}
	return Decision{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}
