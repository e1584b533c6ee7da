package repository

import (
	"context"

	"github.com/fastygo/tasktracker/domain"
)

type CategoryRepository interface {
	List(ctx context.Context) ([]domain.Category, error)
	GetByID(ctx context.Context, id int64) (*domain.Category, error)
	Create(ctx context.Context, category *domain.Category) (*domain.Category, error)
	Delete(ctx context.Context, id int64) error
	CountActive(ctx context.Context) ([]domain.CategoryStat, error)
}
