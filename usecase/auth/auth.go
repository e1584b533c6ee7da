package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/repository"
	"github.com/fastygo/tasktracker/usecase"
)

// Config describes the password gate and the signed session cookie.
type Config struct {
	Password string
	Secret   string
	Issuer   string
	TTL      time.Duration
}

type UseCase struct {
	sessions repository.SessionRepository
	password []byte
	secret   []byte
	issuer   string
	ttl      time.Duration
	clock    usecase.Clock
	logger   *zap.Logger
}

func New(sessions repository.SessionRepository, cfg Config, clock usecase.Clock, logger *zap.Logger) (*UseCase, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Password == "" {
		return nil, errors.New("auth: password must not be empty")
	}

	secret := []byte(cfg.Secret)
	if len(secret) == 0 {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return nil, fmt.Errorf("auth: generating signing key: %w", err)
		}
		secret = []byte(hex.EncodeToString(buf))
		logger.Warn("JWT_SECRET not set; sessions will not survive a restart")
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &UseCase{
		sessions: sessions,
		password: []byte(cfg.Password),
		secret:   secret,
		issuer:   cfg.Issuer,
		ttl:      ttl,
		clock:    clock,
		logger:   logger,
	}, nil
}

// TTL is the lifetime of a fresh session.
func (uc *UseCase) TTL() time.Duration {
	return uc.ttl
}

// Login checks the password and opens a session, returning the signed token
// that identifies it.
func (uc *UseCase) Login(ctx context.Context, password string) (string, *domain.Session, error) {
	if subtle.ConstantTimeCompare([]byte(password), uc.password) != 1 {
		uc.logger.Warn("rejected login attempt")
		return "", nil, domain.ErrUnauthorized
	}

	now := uc.clock.Now()
	session := &domain.Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		ExpiresAt: now.Add(uc.ttl),
	}
	if err := uc.sessions.Save(ctx, session); err != nil {
		return "", nil, err
	}

	token, err := uc.sign(session)
	if err != nil {
		return "", nil, err
	}
	uc.logger.Info("session opened", zap.String("session_id", session.ID))
	return token, session, nil
}

// Authenticate resolves a token to its live session.
func (uc *UseCase) Authenticate(ctx context.Context, token string) (*domain.Session, error) {
	id, err := uc.sessionID(token)
	if err != nil {
		return nil, err
	}

	session, err := uc.sessions.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	if session.IsExpired(uc.clock.Now()) {
		_ = uc.sessions.Delete(ctx, id)
		return nil, domain.ErrUnauthorized
	}
	return session, nil
}

// Renew slides the expiry of a session that has used up half of its lifetime
// and returns a token carrying the new expiry. Younger sessions are left alone
// and renewed reports false.
func (uc *UseCase) Renew(ctx context.Context, session *domain.Session) (token string, renewed bool, err error) {
	now := uc.clock.Now()
	if session.ExpiresAt.Sub(now) > uc.ttl/2 {
		return "", false, nil
	}

	until := now.Add(uc.ttl)
	if err := uc.sessions.Extend(ctx, session.ID, until); err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return "", false, domain.ErrUnauthorized
		}
		return "", false, err
	}
	session.ExpiresAt = until

	token, err = uc.sign(session)
	if err != nil {
		return "", false, err
	}
	uc.logger.Debug("session renewed", zap.String("session_id", session.ID))
	return token, true, nil
}

// Logout revokes the session behind token. Invalid tokens are ignored.
func (uc *UseCase) Logout(ctx context.Context, token string) error {
	id, err := uc.sessionID(token)
	if err != nil {
		return nil
	}
	return uc.sessions.Delete(ctx, id)
}

func (uc *UseCase) sign(session *domain.Session) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:        session.ID,
		Issuer:    uc.issuer,
		IssuedAt:  jwt.NewNumericDate(session.CreatedAt),
		ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(uc.secret)
	if err != nil {
		return "", fmt.Errorf("signing session token: %w", err)
	}
	return signed, nil
}

func (uc *UseCase) sessionID(token string) (string, error) {
	if token == "" {
		return "", domain.ErrUnauthorized
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return uc.secret, nil
	})
	if err != nil || !parsed.Valid || claims.ID == "" {
		uc.logger.Debug("invalid session token", zap.Error(err))
		return "", domain.ErrUnauthorized
	}
	if uc.issuer != "" && !claims.VerifyIssuer(uc.issuer, true) {
		return "", domain.ErrUnauthorized
	}
	return claims.ID, nil
}
