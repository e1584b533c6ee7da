package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/repository"
)

type categoryRepository struct {
	db *sqlx.DB
}

// NewCategoryRepository returns a SQLite-backed implementation of CategoryRepository.
func NewCategoryRepository(db *sqlx.DB) repository.CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	var rows []categoryRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT id, name, color, created_at FROM categories ORDER BY name`); err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}

	categories := make([]domain.Category, 0, len(rows))
	for _, row := range rows {
		category, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, nil
}

func (r *categoryRepository) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	var row categoryRow
	if err := r.db.GetContext(ctx, &row, `SELECT id, name, color, created_at FROM categories WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("getting category %d: %w", id, err)
	}
	category, err := row.toDomain()
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) Create(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	if category == nil {
		return nil, domain.ErrInvalidPayload
	}

	createdAt, stamp := storedTime(category.CreatedAt)
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (name, color, created_at) VALUES (?, ?, ?)`,
		category.Name, category.Color, stamp,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrCategoryExists
		}
		return nil, fmt.Errorf("inserting category: %w", err)
	}
	if category.ID, err = result.LastInsertId(); err != nil {
		return nil, fmt.Errorf("reading category id: %w", err)
	}
	category.CreatedAt = createdAt
	return category, nil
}

func (r *categoryRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting category %d: %w", id, err)
	}
	return nil
}

func (r *categoryRepository) CountActive(ctx context.Context) ([]domain.CategoryStat, error) {
	var stats []domain.CategoryStat
	err := r.db.SelectContext(ctx, &stats, `
		SELECT c.name AS name, c.color AS color, COUNT(t.id) AS count
		FROM categories c
		LEFT JOIN todos t ON c.id = t.category_id AND t.completed = 0
		GROUP BY c.id, c.name, c.color
		HAVING COUNT(t.id) > 0
		ORDER BY count DESC, c.name`,
	)
	if err != nil {
		return nil, fmt.Errorf("counting todos by category: %w", err)
	}
	if stats == nil {
		stats = []domain.CategoryStat{}
	}
	return stats, nil
}
