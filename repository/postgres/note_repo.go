package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/repository"
)

type noteRepository struct {
	pool *pgxpool.Pool
}

// NewNoteRepository returns a Postgres-backed implementation of NoteRepository.
func NewNoteRepository(pool *pgxpool.Pool) repository.NoteRepository {
	return &noteRepository{pool: pool}
}

func (r *noteRepository) ListByTodo(ctx context.Context, todoID int64) ([]domain.Note, error) {
	rows, err := r.pool.Query(ctx, `
	SELECT id, todo_id, note_type, content, created_at
	FROM task_notes
	WHERE todo_id = $1
	ORDER BY created_at DESC, id DESC
	`, todoID)
	if err != nil {
		return nil, fmt.Errorf("listing notes for todo %d: %w", todoID, err)
	}
	defer rows.Close()

	notes := []domain.Note{}
	for rows.Next() {
		var (
			note     domain.Note
			noteType string
		)
		if err := rows.Scan(&note.ID, &note.TodoID, &noteType, &note.Content, &note.CreatedAt); err != nil {
			return nil, err
		}
		note.Type = domain.NoteType(noteType)
		notes = append(notes, note)
	}
	return notes, rows.Err()
}

func (r *noteRepository) Append(ctx context.Context, note *domain.Note) (*domain.Note, error) {
	if note == nil {
		return nil, domain.ErrInvalidPayload
	}

	now := note.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}

	if err := r.pool.QueryRow(ctx, `
	INSERT INTO task_notes (todo_id, note_type, content, created_at)
	SELECT id, $2::varchar, $3::text, $4::timestamptz FROM todos WHERE id = $1
	RETURNING id, created_at
	`, note.TodoID, string(note.Type), note.Content, now,
	).Scan(&note.ID, &note.CreatedAt); err != nil {
		if isNoRows(err) {
			return nil, domain.ErrTodoNotFound
		}
		return nil, fmt.Errorf("appending note: %w", err)
	}
	return note, nil
}
