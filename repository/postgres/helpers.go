package postgres

import (
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fastygo/tasktracker/domain"
)

const uniqueViolation = "23505"

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func nullDate(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return domain.DateOf(*t)
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func dateOnly(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := domain.DateOf(*t)
	return &d
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
