package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestBudget(t *testing.T) {
	b := NewBudget(2)

	if !b.Allow() {
		t.Error("fresh budget should allow")
	}
	if err := b.Use(); err != nil {
		t.Fatalf("first use: %v", err)
	}
	if err := b.Use(); err != nil {
		t.Fatalf("second use: %v", err)
	}
	if b.Allow() {
		t.Error("exhausted budget should not allow")
	}
	if err := b.Use(); err == nil {
		t.Error("use beyond the cap should fail")
	}
	if got := b.Used(); got != 2 {
		t.Errorf("Used() = %d, want 2", got)
	}
}

func TestBudget_ZeroMax(t *testing.T) {
	b := NewBudget(0)
	if b.Allow() {
		t.Error("zero budget should never allow")
	}
	if err := b.Use(); err == nil {
		t.Error("zero budget should reject use")
	}
}

func TestPacer_SpacesCalls(t *testing.T) {
	p := NewPacer(50 * time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := p.Wait(ctx, "example.com"); err != nil {
			t.Fatalf("wait %d: %v", i, err)
		}
	}
	if elapsed := time.Since(start); elapsed < 100*time.Millisecond {
		t.Errorf("three calls finished in %v, expected at least 100ms", elapsed)
	}
}

func TestPacer_IndependentKeys(t *testing.T) {
	p := NewPacer(time.Second)
	ctx := context.Background()

	start := time.Now()
	if err := p.Wait(ctx, "a.example.com"); err != nil {
		t.Fatal(err)
	}
	if err := p.Wait(ctx, "b.example.com"); err != nil {
		t.Fatal(err)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("distinct hosts should not wait on each other, elapsed %v", elapsed)
	}
}

func TestPacer_ContextCancel(t *testing.T) {
	p := NewPacer(5 * time.Second)

	if err := p.Wait(context.Background(), "slow.example.com"); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := p.Wait(ctx, "slow.example.com"); err != context.DeadlineExceeded {
		t.Errorf("expected deadline error, got %v", err)
	}
}
