package repository

import (
	"context"

	"github.com/fastygo/tasktracker/domain"
)

type NoteRepository interface {
	ListByTodo(ctx context.Context, todoID int64) ([]domain.Note, error)
	Append(ctx context.Context, note *domain.Note) (*domain.Note, error)
}
