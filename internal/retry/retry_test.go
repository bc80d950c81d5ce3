package retry

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestWithRetry_FirstTrySuccess(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), Config{Attempts: 3, Delay: time.Millisecond}, func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestWithRetry_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), Config{Attempts: 3, Delay: time.Millisecond}, func() error {
		calls++
		if calls < 3 {
			return errors.New("temporary")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestWithRetry_Exhausted(t *testing.T) {
	failure := errors.New("feed unavailable")
	calls := 0
	err := WithRetry(context.Background(), Config{Attempts: 2, Delay: time.Millisecond}, func() error {
		calls++
		return failure
	})
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
	if !errors.Is(err, failure) {
		t.Errorf("expected wrapped original error, got %v", err)
	}
	if err == nil || !strings.Contains(err.Error(), "after 2 attempts") {
		t.Errorf("expected attempt count in error, got %v", err)
	}
}

func TestWithRetry_ContextCancelsWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	err := WithRetry(ctx, Config{Attempts: 5, Delay: time.Minute}, func() error {
		calls++
		cancel()
		return errors.New("fail")
	})
	if err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call before cancel, got %d", calls)
	}
}
