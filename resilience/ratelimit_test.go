package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRateLimiter_Burst(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 1, Burst: 3})

	for i := 0; i < 3; i++ {
		if !rl.Allow() {
			t.Fatalf("Allow() #%d = false, want true", i)
		}
	}
	if rl.Allow() {
		t.Error("Allow() beyond burst = true, want false")
	}

	err := rl.Execute(context.Background(), func(context.Context) error { return nil })
	if !errors.Is(err, ErrRateLimitExceeded) {
		t.Errorf("Execute() error = %v, want ErrRateLimitExceeded", err)
	}
}

func TestRateLimiter_Wait(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 100, Burst: 1, MaxWait: time.Second})
	ctx := context.Background()

	if err := rl.Wait(ctx); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	start := time.Now()
	if err := rl.Wait(ctx); err != nil {
		t.Fatalf("second Wait() error = %v", err)
	}
	if time.Since(start) < 5*time.Millisecond {
		t.Error("second Wait() should have waited for a token")
	}
}

func TestRateLimiter_WaitExceedsMax(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 0.1, Burst: 1, MaxWait: 10 * time.Millisecond})
	ctx := context.Background()

	_ = rl.Wait(ctx)
	if err := rl.Wait(ctx); !errors.Is(err, ErrRateLimitExceeded) {
		t.Errorf("Wait() error = %v, want ErrRateLimitExceeded", err)
	}
}

func TestKeyedLimiter_PerKey(t *testing.T) {
	kl := NewKeyedLimiter(KeyedLimiterConfig{Rate: 0.5, Burst: 2})
	now := time.Unix(1_700_000_000, 0)
	kl.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		if ok, _ := kl.Allow("10.0.0.1"); !ok {
			t.Fatalf("Allow(a) #%d = false", i)
		}
	}

	ok, wait := kl.Allow("10.0.0.1")
	if ok {
		t.Fatal("Allow(a) beyond burst = true")
	}
	if wait != 2*time.Second {
		t.Errorf("retry after = %v, want 2s", wait)
	}

	if ok, _ := kl.Allow("10.0.0.2"); !ok {
		t.Error("other key should have its own bucket")
	}

	now = now.Add(2 * time.Second)
	if ok, _ := kl.Allow("10.0.0.1"); !ok {
		t.Error("bucket should refill over time")
	}

	if kl.Rejected() != 1 {
		t.Errorf("Rejected() = %d, want 1", kl.Rejected())
	}
}

func TestKeyedLimiter_Cleanup(t *testing.T) {
	kl := NewKeyedLimiter(KeyedLimiterConfig{IdleTTL: time.Minute})
	now := time.Unix(1_700_000_000, 0)
	kl.now = func() time.Time { return now }

	kl.Allow("old")
	now = now.Add(2 * time.Minute)
	kl.Allow("new")

	if removed := kl.Cleanup(); removed != 1 {
		t.Errorf("Cleanup() = %d, want 1", removed)
	}
	if kl.Len() != 1 {
		t.Errorf("Len() = %d, want 1", kl.Len())
	}
}

func TestKeyedLimiter_RunStops(t *testing.T) {
	kl := NewKeyedLimiter(KeyedLimiterConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		kl.Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
