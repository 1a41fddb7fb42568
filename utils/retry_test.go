package utils

import (
	"errors"
	"testing"
	"time"
)

func TestRetrySucceedsAfterFailures(t *testing.T) {
	r := &RetryConfig{
		MaxAttempts: 5,
		BaseDelay:   time.Millisecond,
		MaxDelay:    5 * time.Millisecond,
		Logger:      NewLogger(LevelError),
	}

	calls := 0
	err := r.Do("flaky op", func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetryExhaustsAttempts(t *testing.T) {
	r := &RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
		Logger:      NewLogger(LevelError),
	}

	boom := errors.New("still down")
	calls := 0
	err := r.Do("dead op", func() error {
		calls++
		return boom
	})

	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped original error", err)
	}
}

func TestRetryNoRetryOnImmediateSuccess(t *testing.T) {
	r := &RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   time.Second, // would be noticeable if slept
		Logger:      NewLogger(LevelError),
	}

	start := time.Now()
	calls := 0
	if err := r.Do("ok op", func() error { calls++; return nil }); err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Error("success path must not sleep")
	}
}
