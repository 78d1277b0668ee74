package utils

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetrySucceedsEventually(t *testing.T) {
	r := &RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond, Logger: NewLogger(false)}

	calls := 0
	err := r.Do(context.Background(), "flaky-op", func() error {
		calls++
		if calls < 3 {
			return errors.New("flake")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do returned error: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d; want 3", calls)
	}
}

func TestRetryGivesUpAfterMaxAttempts(t *testing.T) {
	r := &RetryConfig{MaxAttempts: 2, BaseDelay: time.Millisecond, Logger: NewLogger(false)}

	calls := 0
	err := r.Do(context.Background(), "doomed-op", func() error {
		calls++
		return errors.New("always fails")
	})
	if err == nil {
		t.Fatal("Do returned nil error; want failure after exhausting attempts")
	}
	if calls != 2 {
		t.Errorf("calls = %d; want 2", calls)
	}
}

func TestRetryStopsOnCancelledContext(t *testing.T) {
	r := &RetryConfig{MaxAttempts: 5, BaseDelay: time.Minute, Logger: NewLogger(false)}

	ctx, cancel := context.WithCancel(context.Background())
	start := time.Now()
	err := r.Do(ctx, "cancelled-op", func() error {
		cancel()
		return errors.New("flake")
	})
	if err == nil {
		t.Fatal("Do returned nil error after cancellation")
	}
	if time.Since(start) > 5*time.Second {
		t.Error("Do waited out the back-off despite cancellation")
	}
}
