package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/repository"
)

type noteRepository struct {
	db *sqlx.DB
}

// NewNoteRepository returns a SQLite-backed implementation of NoteRepository.
func NewNoteRepository(db *sqlx.DB) repository.NoteRepository {
	return &noteRepository{db: db}
}

func (r *noteRepository) ListByTodo(ctx context.Context, todoID int64) ([]domain.Note, error) {
	var rows []noteRow
	if err := r.db.SelectContext(ctx, &rows, `
		SELECT id, todo_id, note_type, content, created_at
		FROM task_notes
		WHERE todo_id = ?
		ORDER BY created_at DESC, id DESC`,
		todoID,
	); err != nil {
		return nil, fmt.Errorf("listing notes for todo %d: %w", todoID, err)
	}

	notes := make([]domain.Note, 0, len(rows))
	for _, row := range rows {
		note, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}
	return notes, nil
}

// Append inserts only when the parent todo exists; notes are never edited.
func (r *noteRepository) Append(ctx context.Context, note *domain.Note) (*domain.Note, error) {
	if note == nil {
		return nil, domain.ErrInvalidPayload
	}
	if note.Type == "" {
		note.Type = domain.NoteTypeNote
	}

	createdAt, stamp := storedTime(note.CreatedAt)
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO task_notes (todo_id, note_type, content, created_at)
		SELECT id, ?, ?, ? FROM todos WHERE id = ?`,
		string(note.Type), note.Content, stamp, note.TodoID,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting note: %w", err)
	}
	if err := requireRow(result, domain.ErrTodoNotFound); err != nil {
		return nil, err
	}
	if note.ID, err = result.LastInsertId(); err != nil {
		return nil, fmt.Errorf("reading note id: %w", err)
	}
	note.CreatedAt = createdAt
	return note, nil
}
