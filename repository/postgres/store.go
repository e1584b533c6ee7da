package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/tasktracker/repository"
)

// NewStore wires every Postgres repository around one pool.
func NewStore(pool *pgxpool.Pool) *repository.Store {
	return &repository.Store{
		Todos:      NewTodoRepository(pool),
		Categories: NewCategoryRepository(pool),
		Subtasks:   NewSubtaskRepository(pool),
		Notes:      NewNoteRepository(pool),
		Settings:   NewSettingsRepository(pool),
		Ping:       pool.Ping,
		Close: func() error {
			pool.Close()
			return nil
		},
	}
}
