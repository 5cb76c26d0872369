// Package throttle tracks failed authentication attempts per client address
// and temporarily blocks addresses that cross the failure threshold. State is
// process-local; a multi-instance deployment would need to move it to a
// shared store.
package throttle

import (
	"context"
	"sync"
	"time"

	"studentdocs.org/internal/audit"
	"studentdocs.org/internal/obs"
)

const (
	// DefaultThreshold is the number of failures that triggers a block.
	DefaultThreshold = 10
	// DefaultBlockDuration is how long a triggered block lasts.
	DefaultBlockDuration = 60 * time.Second
)

type entry struct {
	failures     int
	blockedUntil time.Time
}

// Limiter is a fixed-window failure counter keyed by client address. It is
// passed explicitly into the components that need it rather than held as
// package state.
type Limiter struct {
	mu        sync.Mutex
	threshold int
	blockFor  time.Duration
	now       func() time.Time
	entries   map[string]*entry
}

// Option configures Limiter behavior.
type Option func(*Limiter)

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) Option {
	return func(l *Limiter) {
		if fn != nil {
			l.now = fn
		}
	}
}

// New constructs a Limiter. Non-positive arguments fall back to the defaults.
func New(threshold int, blockFor time.Duration, opts ...Option) *Limiter {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if blockFor <= 0 {
		blockFor = DefaultBlockDuration
	}
	l := &Limiter{
		threshold: threshold,
		blockFor:  blockFor,
		now:       time.Now,
		entries:   make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// IsBlocked reports whether the address is inside an active block window.
// An expired block is lazily cleared on check; the failure counter survives
// the block, so the next failure re-blocks immediately.
func (l *Limiter) IsBlocked(addr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[addr]
	if !ok || e.blockedUntil.IsZero() {
		return false
	}
	if l.now().Before(e.blockedUntil) {
		return true
	}
	e.blockedUntil = time.Time{}
	obs.SetBlockedAddresses(l.blockedCountLocked())
	return false
}

// RecordFailure increments the failure count for the address. Crossing the
// threshold sets the block window and emits a security-audit event.
func (l *Limiter) RecordFailure(ctx context.Context, addr string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[addr]
	if !ok {
		e = &entry{}
		l.entries[addr] = e
	}
	e.failures++
	if e.failures >= l.threshold && e.blockedUntil.IsZero() {
		until := l.now().Add(l.blockFor)
		e.blockedUntil = until
		obs.SetBlockedAddresses(l.blockedCountLocked())
		_ = audit.LogEvent(ctx, "auth.address.blocked", map[string]any{
			"address":  addr,
			"failures": e.failures,
			"until":    until.UTC().Format(time.RFC3339),
		})
	}
}

// RecordSuccess resets the failure count for the address. It does not lift an
// active block: a block, once triggered, runs its full duration.
func (l *Limiter) RecordSuccess(addr string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[addr]
	if !ok {
		return
	}
	e.failures = 0
	if e.blockedUntil.IsZero() {
		delete(l.entries, addr)
	}
}

// Failures returns the current failure count for the address.
func (l *Limiter) Failures(addr string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[addr]
	if !ok {
		return 0
	}
	return e.failures
}

func (l *Limiter) blockedCountLocked() int {
	now := l.now()
	count := 0
	for _, e := range l.entries {
		if !e.blockedUntil.IsZero() && now.Before(e.blockedUntil) {
			count++
		}
	}
	return count
}
