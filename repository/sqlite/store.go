package sqlite

import (
	"github.com/jmoiron/sqlx"

	"github.com/fastygo/tasktracker/repository"
)

// NewStore wires every repository to the same SQLite handle.
func NewStore(db *sqlx.DB) *repository.Store {
	return &repository.Store{
		Todos:      NewTodoRepository(db),
		Categories: NewCategoryRepository(db),
		Subtasks:   NewSubtaskRepository(db),
		Notes:      NewNoteRepository(db),
		Settings:   NewSettingsRepository(db),
		Ping:       db.PingContext,
		Close:      db.Close,
	}
}
