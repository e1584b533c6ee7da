package lifecycle

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestShutdownRunsHooksInReverse(t *testing.T) {
	m := New(time.Second, nil)
	var order []string
	for _, name := range []string{"database", "sessions", "http"} {
		name := name
		m.Register(name, func(context.Context) error {
			order = append(order, name)
			return nil
		})
	}

	if err := m.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	want := []string{"http", "sessions", "database"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
}

func TestShutdownContinuesPastFailures(t *testing.T) {
	m := New(time.Second, nil)
	boom := errors.New("boom")
	ran := false
	m.Register("first", func(context.Context) error {
		ran = true
		return nil
	})
	m.Register("second", Closer(func() error { return boom }))

	err := m.Shutdown(context.Background())
	if !errors.Is(err, boom) {
		t.Errorf("Shutdown() error = %v, want %v", err, boom)
	}
	if !ran {
		t.Error("first hook did not run")
	}
}

func TestShutdownIsOnce(t *testing.T) {
	m := New(time.Second, nil)
	calls := 0
	m.Register("db", func(context.Context) error {
		calls++
		return nil
	})
	_ = m.Shutdown(context.Background())
	_ = m.Shutdown(context.Background())
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestContextCancel(t *testing.T) {
	m := New(time.Second, nil)
	ctx, cancel := m.Context(context.Background())
	cancel()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context not cancelled")
	}
}
