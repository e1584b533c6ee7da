package repository

import (
	"context"
	"time"

	"github.com/fastygo/tasktracker/domain"
)

type SessionRepository interface {
	Get(ctx context.Context, id string) (*domain.Session, error)
	Save(ctx context.Context, session *domain.Session) error
	Delete(ctx context.Context, id string) error
	// Extend moves the expiry of a live session to until.
	Extend(ctx context.Context, id string, until time.Time) error
	Ping(ctx context.Context) error
	Close() error
}
