package backoff

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDriver_SucceedsImmediately(t *testing.T) {
	d := New()
	calls := 0
	err := d.Run(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestDriver_RetriesThenSucceeds(t *testing.T) {
	d := &Driver{schedule: []time.Duration{time.Millisecond, 2 * time.Millisecond}}
	calls := 0
	err := d.Run(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestDriver_SaturatesAtLastScheduleEntry(t *testing.T) {
	d := &Driver{schedule: []time.Duration{time.Millisecond, 2 * time.Millisecond}}
	calls := 0
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_ = d.Run(ctx, func(ctx context.Context) error {
		calls++
		return errors.New("always fails")
	})
	// With saturation at 2ms, many more than 2 attempts fit in 20ms;
	// without saturation the schedule would run out of entries and panic.
	if calls < 3 {
		t.Errorf("calls = %d, want at least 3 attempts within the timeout", calls)
	}
}

func TestDriver_CancellationAbortsWithoutRetry(t *testing.T) {
	d := &Driver{schedule: []time.Duration{time.Hour}}
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- d.Run(ctx, func(ctx context.Context) error {
			calls++
			return errors.New("fails")
		})
	}()
	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("err = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not observe cancellation within one schedule tick")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want exactly 1 (no retry after cancellation)", calls)
	}
}
