package poll

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestWaitUntil_ImmediateTrue(t *testing.T) {
	start := time.Now()
	ok := WaitUntil(context.Background(), zerolog.Nop(), func() (bool, error) {
		return true, nil
	}, time.Second, 200*time.Millisecond)

	if !ok {
		t.Fatalf("expected true")
	}
	if elapsed := time.Since(start); elapsed >= 200*time.Millisecond {
		t.Fatalf("true predicate must not sleep, took %v", elapsed)
	}
}

func TestWaitUntil_TimeoutWindow(t *testing.T) {
	const timeout = 100 * time.Millisecond
	const interval = 20 * time.Millisecond

	start := time.Now()
	ok := WaitUntil(context.Background(), zerolog.Nop(), func() (bool, error) {
		return false, nil
	}, timeout, interval)
	elapsed := time.Since(start)

	if ok {
		t.Fatalf("expected timeout")
	}
	if elapsed < timeout {
		t.Fatalf("returned before timeout: %v", elapsed)
	}
	if elapsed >= timeout+2*interval {
		t.Fatalf("returned too late after timeout: %v", elapsed)
	}
}

func TestWaitUntil_PredicateErrorRetries(t *testing.T) {
	calls := 0
	ok := WaitUntil(context.Background(), zerolog.Nop(), func() (bool, error) {
		calls++
		if calls < 3 {
			return false, errors.New("transient transport error")
		}
		return true, nil
	}, time.Second, time.Millisecond)

	if !ok {
		t.Fatalf("expected success after transient errors")
	}
	if calls != 3 {
		t.Fatalf("calls=%d want=3", calls)
	}
}

func TestWaitUntil_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ok := WaitUntil(ctx, zerolog.Nop(), func() (bool, error) {
		return false, nil
	}, time.Minute, time.Millisecond)

	if ok {
		t.Fatalf("expected false on cancelled context")
	}
}
