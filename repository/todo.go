package repository

import (
	"context"
	"time"

	"github.com/fastygo/tasktracker/domain"
)

type TodoFilter struct {
	Completed *bool
}

type TodoRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Todo, error)
	// List orders active todos by priority, due date and recency; completed todos by last update.
	List(ctx context.Context, filter TodoFilter) ([]domain.Todo, error)
	Create(ctx context.Context, todo *domain.Todo) (*domain.Todo, error)
	Update(ctx context.Context, todo *domain.Todo) error
	SetCompleted(ctx context.Context, id int64, completed bool, at time.Time) error
	Delete(ctx context.Context, id int64) error
	DeleteCompleted(ctx context.Context) (int64, error)
	Stats(ctx context.Context, today time.Time) (domain.TodoStats, error)
	CountActiveByPriority(ctx context.Context) ([]domain.PriorityStat, error)

	// ListDueUnnotified returns incomplete todos due on day that have not been
	// notified for day, highest priority first and oldest first within a priority.
	ListDueUnnotified(ctx context.Context, day time.Time) ([]domain.Todo, error)
	// MarkNotified stamps last_notified = day on every id in one transaction.
	MarkNotified(ctx context.Context, ids []int64, day time.Time) error
}
