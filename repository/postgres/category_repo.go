package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/repository"
)

type categoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository returns a Postgres-backed implementation of CategoryRepository.
func NewCategoryRepository(pool *pgxpool.Pool) repository.CategoryRepository {
	return &categoryRepository{pool: pool}
}

func (r *categoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, color, created_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	categories := []domain.Category{}
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, *category)
	}
	return categories, rows.Err()
}

func (r *categoryRepository) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	row := r.pool.QueryRow(ctx, `SELECT id, name, color, created_at FROM categories WHERE id = $1`, id)
	return scanCategory(row)
}

func (r *categoryRepository) Create(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	if category == nil {
		return nil, domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO categories (name, color, created_at)
	VALUES ($1, $2, $3)
	RETURNING id, created_at
	`

	now := category.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}

	if err := r.pool.QueryRow(ctx, query, category.Name, category.Color, now).
		Scan(&category.ID, &category.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrCategoryExists
		}
		return nil, fmt.Errorf("inserting category: %w", err)
	}
	return category, nil
}

// Delete removes a category; the schema's ON DELETE SET NULL detaches its todos.
func (r *categoryRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting category %d: %w", id, err)
	}
	return nil
}

func (r *categoryRepository) CountActive(ctx context.Context) ([]domain.CategoryStat, error) {
	const query = `
	SELECT c.name, c.color, COUNT(t.id) AS count
	FROM categories c
	LEFT JOIN todos t ON c.id = t.category_id AND t.completed = FALSE
	GROUP BY c.id, c.name, c.color
	HAVING COUNT(t.id) > 0
	ORDER BY count DESC, c.name
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("counting todos by category: %w", err)
	}
	defer rows.Close()

	stats := []domain.CategoryStat{}
	for rows.Next() {
		var stat domain.CategoryStat
		if err := rows.Scan(&stat.Name, &stat.Color, &stat.Count); err != nil {
			return nil, err
		}
		stats = append(stats, stat)
	}
	return stats, rows.Err()
}

func scanCategory(row rowScanner) (*domain.Category, error) {
	var category domain.Category
	if err := row.Scan(&category.ID, &category.Name, &category.Color, &category.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}
