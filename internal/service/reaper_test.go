package service

import (
	"context"
	"testing"
	"time"
)

func TestSessionReaper_Sweep(t *testing.T) {
	var got time.Duration
	sessions := &mockSessionsRepo{
		expireStale: func(ctx context.Context, olderThan time.Duration) (int64, error) {
			got = olderThan
			return 2, nil
		},
	}

	reaper := NewSessionReaper(sessions, time.Minute, 15*time.Minute)
	reaper.Sweep(context.Background())

	if got != 15*time.Minute {
		t.Fatalf("expected 15m cutoff, got %s", got)
	}
}

func TestSessionReaper_RunStopsOnCancel(t *testing.T) {
	sweeps := make(chan struct{}, 10)
	sessions := &mockSessionsRepo{
		expireStale: func(ctx context.Context, olderThan time.Duration) (int64, error) {
			sweeps <- struct{}{}
			return 0, nil
		},
	}

	reaper := NewSessionReaper(sessions, 5*time.Millisecond, time.Minute)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		reaper.Run(ctx)
		close(done)
	}()

	select {
	case <-sweeps:
	case <-time.After(time.Second):
		t.Fatalf("expected at least one sweep")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("expected Run to return after cancellation")
	}
}
