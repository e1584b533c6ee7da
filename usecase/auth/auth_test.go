package auth

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/fastygo/tasktracker/domain"
	boltdb "github.com/fastygo/tasktracker/internal/infrastructure/bolt"
	boltrepo "github.com/fastygo/tasktracker/repository/bolt"
	"github.com/fastygo/tasktracker/usecase"
)

func newTestUseCase(t *testing.T, secret string) *UseCase {
	t.Helper()
	db, err := boltdb.Open(filepath.Join(t.TempDir(), "sessions.db"), nil, boltrepo.SessionBucket)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	sessions := boltrepo.NewSessionRepository(db, time.Hour)
	t.Cleanup(func() { sessions.Close() })

	uc, err := New(sessions, Config{Password: "opensesame", Secret: secret, Issuer: "tasktracker", TTL: time.Hour}, usecase.SystemClock(time.UTC), nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return uc
}

func TestLoginAndAuthenticate(t *testing.T) {
	uc := newTestUseCase(t, "test-secret")
	ctx := context.Background()

	token, session, err := uc.Login(ctx, "opensesame")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if token == "" || session.ID == "" {
		t.Fatalf("Login() = (%q, %+v), want token and session", token, session)
	}

	got, err := uc.Authenticate(ctx, token)
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if got.ID != session.ID {
		t.Fatalf("Authenticate().ID = %q, want %q", got.ID, session.ID)
	}

	if err := uc.Logout(ctx, token); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if _, err := uc.Authenticate(ctx, token); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("Authenticate() after logout error = %v, want %v", err, domain.ErrUnauthorized)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	uc := newTestUseCase(t, "test-secret")

	_, _, err := uc.Login(context.Background(), "letmein")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("Login() error = %v, want %v", err, domain.ErrUnauthorized)
	}
}

func TestAuthenticateRejectsForeignTokens(t *testing.T) {
	issuer := newTestUseCase(t, "secret-a")
	verifier := newTestUseCase(t, "secret-b")
	ctx := context.Background()

	token, _, err := issuer.Login(ctx, "opensesame")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "garbage", token: "not-a-jwt"},
		{name: "other key", token: token},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := verifier.Authenticate(ctx, tt.token); !errors.Is(err, domain.ErrUnauthorized) {
				t.Fatalf("Authenticate() error = %v, want %v", err, domain.ErrUnauthorized)
			}
		})
	}
}

func TestGeneratedSecret(t *testing.T) {
	uc := newTestUseCase(t, "")
	ctx := context.Background()

	token, _, err := uc.Login(ctx, "opensesame")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if _, err := uc.Authenticate(ctx, token); err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
}

func TestRenewSlidesExpiry(t *testing.T) {
	db, err := boltdb.Open(filepath.Join(t.TempDir(), "sessions.db"), nil, boltrepo.SessionBucket)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	sessions := boltrepo.NewSessionRepository(db, time.Hour)
	t.Cleanup(func() { sessions.Close() })

	base := time.Now()
	offset := time.Duration(0)
	clock := usecase.Clock(func() time.Time { return base.Add(offset) })
	uc, err := New(sessions, Config{Password: "opensesame", Secret: "k", TTL: time.Hour}, clock, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx := context.Background()

	_, session, err := uc.Login(ctx, "opensesame")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	offset = 10 * time.Minute
	if _, renewed, err := uc.Renew(ctx, session); err != nil || renewed {
		t.Fatalf("Renew() at 10m = %v, %v, want no renewal", renewed, err)
	}

	offset = 40 * time.Minute
	token, renewed, err := uc.Renew(ctx, session)
	if err != nil || !renewed || token == "" {
		t.Fatalf("Renew() at 40m = %q, %v, %v, want fresh token", token, renewed, err)
	}
	want := base.Add(offset + time.Hour)
	if !session.ExpiresAt.Equal(want) {
		t.Errorf("ExpiresAt = %v, want %v", session.ExpiresAt, want)
	}
	stored, err := sessions.Get(ctx, session.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !stored.ExpiresAt.Equal(want) {
		t.Errorf("stored ExpiresAt = %v, want %v", stored.ExpiresAt, want)
	}
	if _, err := uc.Authenticate(ctx, token); err != nil {
		t.Errorf("Authenticate(renewed) error = %v", err)
	}

	if err := sessions.Delete(ctx, session.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	offset = 80 * time.Minute
	if _, _, err := uc.Renew(ctx, session); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("Renew() after delete error = %v, want %v", err, domain.ErrUnauthorized)
	}
}
