package monitor

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRefresh(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("down") }

	tests := []struct {
		name     string
		database PingFunc
		sessions PingFunc
		want     Status
	}{
		{name: "all up", database: ok, sessions: ok, want: Status{Database: true, SessionStore: true}},
		{name: "database down", database: down, sessions: ok, want: Status{SessionStore: true}},
		{name: "sessions missing", database: ok, sessions: nil, want: Status{Database: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(tt.database, tt.sessions, time.Minute, nil)
			got := m.Refresh()
			if got.Database != tt.want.Database || got.SessionStore != tt.want.SessionStore {
				t.Fatalf("Refresh() = %+v, want %+v", got, tt.want)
			}
			if m.IsOnline() != tt.want.Healthy() {
				t.Errorf("IsOnline() = %v, want %v", m.IsOnline(), tt.want.Healthy())
			}
			if got.LastCheck.IsZero() {
				t.Errorf("LastCheck is zero")
			}
		})
	}
}

func TestStopIsIdempotent(t *testing.T) {
	m := New(nil, nil, time.Hour, nil)
	m.Start()
	m.Stop()
	m.Stop()
}
