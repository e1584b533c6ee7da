package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/repository"
)

type sessionRepository struct {
	client *redislib.Client
	prefix string
	ttl    time.Duration
}

// NewSessionRepository creates a Redis-backed session repository.
func NewSessionRepository(client *redislib.Client, ttl time.Duration) repository.SessionRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &sessionRepository{
		client: client,
		prefix: "tasktracker:session:",
		ttl:    ttl,
	}
}

func (r *sessionRepository) Get(ctx context.Context, id string) (*domain.Session, error) {
	result, err := r.client.Get(ctx, r.key(id)).Result()
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("reading session: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal([]byte(result), &session); err != nil {
		return nil, fmt.Errorf("decoding session: %w", err)
	}
	return &session, nil
}

func (r *sessionRepository) Save(ctx context.Context, session *domain.Session) error {
	if session == nil || session.ID == "" {
		return domain.ErrInvalidPayload
	}

	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	if !session.ExpiresAt.After(session.CreatedAt) {
		session.ExpiresAt = session.CreatedAt.Add(r.ttl)
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		ttl = r.ttl
	}
	return r.client.Set(ctx, r.key(session.ID), payload, ttl).Err()
}

func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, r.key(id)).Err()
}

// Extend rewrites the payload with the new expiry and resets the key TTL to
// match. SET XX never recreates a session deleted in between.
func (r *sessionRepository) Extend(ctx context.Context, id string, until time.Time) error {
	session, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	ttl := time.Until(until)
	if ttl <= 0 {
		return r.Delete(ctx, id)
	}
	session.ExpiresAt = until

	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}
	ok, err := r.client.SetXX(ctx, r.key(id), payload, ttl).Result()
	if err != nil {
		return fmt.Errorf("extending session: %w", err)
	}
	if !ok {
		return domain.ErrSessionNotFound
	}
	return nil
}

func (r *sessionRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *sessionRepository) Close() error {
	return r.client.Close()
}

func (r *sessionRepository) key(id string) string {
	return fmt.Sprintf("%s%s", r.prefix, id)
}
