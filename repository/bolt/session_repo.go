package bolt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	bbolt "go.etcd.io/bbolt"

	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/repository"
)

// SessionBucket holds one JSON-encoded session per key.
const SessionBucket = "sessions"

// SessionRepository stores sessions in a BoltDB bucket. Expired entries are
// rejected on read and removed by Cleanup.
type SessionRepository struct {
	db     *bbolt.DB
	bucket []byte
	ttl    time.Duration
	now    func() time.Time
}

var _ repository.SessionRepository = (*SessionRepository)(nil)

// NewSessionRepository wraps an open Bolt database whose SessionBucket already exists.
func NewSessionRepository(db *bbolt.DB, ttl time.Duration) *SessionRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &SessionRepository{
		db:     db,
		bucket: []byte(SessionBucket),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (r *SessionRepository) Get(_ context.Context, id string) (*domain.Session, error) {
	if r.db == nil {
		return nil, bbolt.ErrDatabaseNotOpen
	}

	var session *domain.Session
	err := r.db.View(func(tx *bbolt.Tx) error {
		payload := tx.Bucket(r.bucket).Get([]byte(id))
		if payload == nil {
			return domain.ErrSessionNotFound
		}
		var s domain.Session
		if err := json.Unmarshal(payload, &s); err != nil {
			return fmt.Errorf("decoding session: %w", err)
		}
		session = &s
		return nil
	})
	if err != nil {
		return nil, err
	}
	if session.IsExpired(r.now()) {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

func (r *SessionRepository) Save(_ context.Context, session *domain.Session) error {
	if session == nil || session.ID == "" {
		return domain.ErrInvalidPayload
	}
	if r.db == nil {
		return bbolt.ErrDatabaseNotOpen
	}

	if session.CreatedAt.IsZero() {
		session.CreatedAt = r.now()
	}
	if !session.ExpiresAt.After(session.CreatedAt) {
		session.ExpiresAt = session.CreatedAt.Add(r.ttl)
	}
	return r.put(session)
}

func (r *SessionRepository) Delete(_ context.Context, id string) error {
	if r.db == nil {
		return bbolt.ErrDatabaseNotOpen
	}
	return r.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(r.bucket).Delete([]byte(id))
	})
}

func (r *SessionRepository) Extend(ctx context.Context, id string, until time.Time) error {
	session, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	session.ExpiresAt = until
	return r.put(session)
}

func (r *SessionRepository) Ping(context.Context) error {
	if r.db == nil {
		return bbolt.ErrDatabaseNotOpen
	}
	return r.db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket(r.bucket) == nil {
			return fmt.Errorf("bolt bucket %q missing", r.bucket)
		}
		return nil
	})
}

// Cleanup removes expired sessions and reports how many were dropped.
func (r *SessionRepository) Cleanup(context.Context) (int, error) {
	if r.db == nil {
		return 0, bbolt.ErrDatabaseNotOpen
	}

	now := r.now()
	removed := 0
	err := r.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(r.bucket)
		var stale [][]byte
		if err := bucket.ForEach(func(k, v []byte) error {
			var s domain.Session
			if err := json.Unmarshal(v, &s); err != nil || s.IsExpired(now) {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		}); err != nil {
			return err
		}
		for _, k := range stale {
			if err := bucket.Delete(k); err != nil {
				return err
			}
		}
		removed = len(stale)
		return nil
	})
	return removed, err
}

func (r *SessionRepository) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *SessionRepository) put(session *domain.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return r.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(r.bucket).Put([]byte(session.ID), payload)
	})
}
