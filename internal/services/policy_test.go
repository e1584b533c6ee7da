package services

import (
	"testing"
	"time"
)

func TestPolicyShouldRun(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	policy := Policy{Interval: 30 * time.Minute, AnchorHour: 7, Location: loc}
	at := func(hour, minute int) time.Time {
		return time.Date(2024, 6, 1, hour, minute, 0, 0, loc)
	}

	tests := []struct {
		name string
		now  time.Time
		last time.Time
		want bool
	}{
		{name: "startup", now: at(3, 0), last: time.Time{}, want: true},
		{name: "within interval", now: at(3, 10), last: at(3, 0), want: false},
		{name: "interval elapsed", now: at(3, 30), last: at(3, 0), want: true},
		{name: "anchor crossed", now: at(7, 1), last: at(6, 50), want: true},
		{name: "anchor already handled", now: at(7, 20), last: at(7, 1), want: false},
		{name: "before anchor", now: at(6, 55), last: at(6, 40), want: false},
		{name: "clock went backwards", now: at(5, 0), last: at(6, 0), want: false},
		{name: "anchor crossed since yesterday", now: at(7, 5), last: at(7, 4).Add(-23 * time.Hour), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := policy.ShouldRun(tt.now, tt.last); got != tt.want {
				t.Errorf("ShouldRun(%s, %s) = %v, want %v", tt.now.Format(time.Kitchen), tt.last.Format(time.Kitchen), got, tt.want)
			}
		})
	}
}

func TestPolicyAnchorDisabled(t *testing.T) {
	policy := Policy{Interval: time.Hour, AnchorHour: -1, Location: time.UTC}
	last := time.Date(2024, 6, 1, 6, 50, 0, 0, time.UTC)
	now := time.Date(2024, 6, 1, 7, 10, 0, 0, time.UTC)

	if policy.ShouldRun(now, last) {
		t.Fatalf("ShouldRun() = true, want false with anchor disabled")
	}
}
