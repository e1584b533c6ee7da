package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/usecase"
	"github.com/fastygo/tasktracker/usecase/notify"
)

type countingScanner struct {
	calls int
	err   error
}

func (s *countingScanner) Scan(context.Context) (notify.Result, error) {
	s.calls++
	return notify.Result{Date: "2024-06-01"}, s.err
}

func TestSchedulerTickFollowsPolicy(t *testing.T) {
	now := time.Date(2024, 6, 1, 5, 0, 0, 0, time.UTC)
	scanner := &countingScanner{}
	s := NewScheduler(scanner, SchedulerConfig{
		CheckInterval: time.Minute,
		Policy:        Policy{Interval: 30 * time.Minute, AnchorHour: 7, Location: time.UTC},
	}, usecase.Clock(func() time.Time { return now }), nil)
	ctx := context.Background()

	steps := []struct {
		advance time.Duration
		ran     bool
	}{
		{advance: 0, ran: true},
		{advance: time.Minute, ran: false},
		{advance: 29 * time.Minute, ran: true},
		{advance: 10 * time.Minute, ran: false},
	}
	for i, step := range steps {
		now = now.Add(step.advance)
		if got := s.Tick(ctx); got != step.ran {
			t.Fatalf("step %d: Tick() = %v, want %v", i, got, step.ran)
		}
	}
	if scanner.calls != 2 {
		t.Fatalf("scans = %d, want 2", scanner.calls)
	}
	if !s.LastScan().Equal(time.Date(2024, 6, 1, 5, 30, 0, 0, time.UTC)) {
		t.Fatalf("LastScan() = %v, want 05:30", s.LastScan())
	}
}

func TestSchedulerFailedScanWaitsForNextSlot(t *testing.T) {
	now := time.Date(2024, 6, 1, 5, 0, 0, 0, time.UTC)
	scanner := &countingScanner{err: errors.New("relay down")}
	s := NewScheduler(scanner, SchedulerConfig{
		Policy: Policy{Interval: 30 * time.Minute, AnchorHour: -1},
	}, usecase.Clock(func() time.Time { return now }), nil)
	ctx := context.Background()

	if !s.Tick(ctx) {
		t.Fatalf("first Tick() = false, want true")
	}
	now = now.Add(time.Minute)
	if s.Tick(ctx) {
		t.Fatalf("Tick() right after failure = true, want false")
	}
	now = now.Add(30 * time.Minute)
	if !s.Tick(ctx) {
		t.Fatalf("Tick() after interval = false, want retry")
	}
}

func TestSchedulerRunNowIgnoresPolicy(t *testing.T) {
	now := time.Date(2024, 6, 1, 5, 0, 0, 0, time.UTC)
	scanner := &countingScanner{err: domain.ErrNotificationsDisabled}
	s := NewScheduler(scanner, SchedulerConfig{
		Policy: Policy{Interval: time.Hour, AnchorHour: -1},
	}, usecase.Clock(func() time.Time { return now }), nil)
	ctx := context.Background()

	s.Tick(ctx)
	if _, err := s.RunNow(ctx); !errors.Is(err, domain.ErrNotificationsDisabled) {
		t.Fatalf("RunNow() error = %v, want %v", err, domain.ErrNotificationsDisabled)
	}
	if scanner.calls != 2 {
		t.Fatalf("scans = %d, want 2", scanner.calls)
	}
}

func TestSchedulerStartStop(t *testing.T) {
	scanner := &countingScanner{}
	s := NewScheduler(scanner, SchedulerConfig{
		CheckInterval: time.Hour,
		Policy:        Policy{Interval: time.Hour, AnchorHour: -1},
	}, usecase.SystemClock(time.UTC), nil)

	if err := s.Every("noop", time.Hour, func(context.Context) error { return nil }); err != nil {
		t.Fatalf("Every() error = %v", err)
	}
	if err := s.Every("too fast", time.Millisecond, func(context.Context) error { return nil }); err == nil {
		t.Fatalf("Every() with sub-second interval error = nil, want error")
	}

	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if scanner.calls != 1 {
		t.Fatalf("startup scans = %d, want 1", scanner.calls)
	}
}
