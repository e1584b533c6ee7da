package category

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/repository"
	"github.com/fastygo/tasktracker/usecase"
)

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

type UseCase struct {
	categories repository.CategoryRepository
	clock      usecase.Clock
	logger     *zap.Logger
}

func New(categories repository.CategoryRepository, clock usecase.Clock, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		categories: categories,
		clock:      clock,
		logger:     logger,
	}
}

func (uc *UseCase) List(ctx context.Context) ([]domain.Category, error) {
	return uc.categories.List(ctx)
}

// Add creates a category. Unknown or malformed colors fall back to the default.
func (uc *UseCase) Add(ctx context.Context, name, color string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrEmptyCategoryName
	}
	color = strings.TrimSpace(color)
	if !hexColor.MatchString(color) {
		color = domain.DefaultCategoryColor
	}

	created, err := uc.categories.Create(ctx, &domain.Category{
		Name:      name,
		Color:     color,
		CreatedAt: uc.clock.Now(),
	})
	if err != nil {
		return nil, err
	}
	uc.logger.Info("category created", zap.Int64("category_id", created.ID), zap.String("name", name))
	return created, nil
}

// Delete removes a category; todos that referenced it become uncategorized.
func (uc *UseCase) Delete(ctx context.Context, id int64) error {
	return uc.categories.Delete(ctx, id)
}
