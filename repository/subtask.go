package repository

import (
	"context"

	"github.com/fastygo/tasktracker/domain"
)

type SubtaskRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Subtask, error)
	ListByTodo(ctx context.Context, todoID int64) ([]domain.Subtask, error)
	// ListByTodos groups subtasks of several todos, each slice in order_index order.
	ListByTodos(ctx context.Context, todoIDs []int64) (map[int64][]domain.Subtask, error)
	// Create assigns the next order_index of the parent todo. Indexes are never reused.
	Create(ctx context.Context, subtask *domain.Subtask) (*domain.Subtask, error)
	SetCompleted(ctx context.Context, id int64, completed bool) error
	Delete(ctx context.Context, id int64) error
}
