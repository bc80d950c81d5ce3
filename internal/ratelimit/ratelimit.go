// Package ratelimit provides the small limiters the app needs: a per-host
// pacer for feed fetching and a per-run request budget for AI calls.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Pacer enforces a minimum interval between operations sharing a key
// (one key per remote host).
type Pacer struct {
	mu       sync.Mutex
	interval time.Duration
	last     map[string]time.Time
}

func NewPacer(interval time.Duration) *Pacer {
	return &Pacer{
		interval: interval,
		last:     make(map[string]time.Time),
	}
}

// Wait blocks until the key's interval has elapsed or the context is done.
func (p *Pacer) Wait(ctx context.Context, key string) error {
	p.mu.Lock()
	now := time.Now()
	next := p.last[key].Add(p.interval)
	if next.Before(now) {
		next = now
	}
	p.last[key] = next
	p.mu.Unlock()

	wait := time.Until(next)
	if wait <= 0 {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return nil
	}
}

// Budget caps the number of requests in one run. Zero max disables all use.
type Budget struct {
	mu   sync.Mutex
	max  int
	used int
}

func NewBudget(max int) *Budget {
	return &Budget{max: max}
}

// Allow reports whether another request fits the budget.
func (b *Budget) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.used < b.max
}

// Use consumes one request from the budget.
func (b *Budget) Use() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.used >= b.max {
		return fmt.Errorf("request budget exceeded (%d/%d)", b.used, b.max)
	}
	b.used++
	return nil
}

// Used returns how many requests were consumed.
func (b *Budget) Used() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.used
}
