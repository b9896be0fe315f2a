package retrylimit

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastConfig(attempts int) Config {
	return Config{
		MaxAttempts:  attempts,
		InitialDelay: time.Millisecond,
		MaxDelay:     2 * time.Millisecond,
		Multiplier:   2,
	}
}

func TestDoSucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := Do(context.Background(), nil, fastConfig(3), func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("flaky")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestDoGivesUp(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	err := Do(context.Background(), nil, fastConfig(2), func(context.Context) error {
		calls++
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped boom, got %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
}

func TestDoStopsOnPermanent(t *testing.T) {
	boom := errors.New("not found")
	calls := 0
	err := Do(context.Background(), nil, fastConfig(5), func(context.Context) error {
		calls++
		return Permanent(boom)
	})
	if err != boom {
		t.Fatalf("expected unwrapped permanent error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestDoHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := Do(ctx, nil, fastConfig(3), func(context.Context) error {
		called = true
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if called {
		t.Error("expected fn not to be called")
	}
}

func TestAdaptiveLimiter(t *testing.T) {
	lim := NewAdaptiveLimiter(4, 1, 8, 1, 0.5)

	lim.Throttled()
	if got := lim.CurrentLimit(); got != 2 {
		t.Errorf("expected 2 rps after throttle, got %v", got)
	}

	lim.Throttled()
	lim.Throttled()
	if got := lim.CurrentLimit(); got != 1 {
		t.Errorf("expected floor of 1 rps, got %v", got)
	}

	// recent failure blocks the step up
	lim.Success()
	if got := lim.CurrentLimit(); got != 1 {
		t.Errorf("expected 1 rps during cooldown, got %v", got)
	}
}

func TestAdaptiveLimiterCeiling(t *testing.T) {
	lim := NewAdaptiveLimiter(7, 1, 8, 5, 0.5)
	lim.Success()
	if got := lim.CurrentLimit(); got != 8 {
		t.Errorf("expected ceiling of 8 rps, got %v", got)
	}
}
