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

const todoSelect = `
	SELECT t.id, t.task, t.description, t.completed, t.priority, t.due_date, t.category_id,
	       c.name, c.color, t.created_at, t.updated_at, t.last_notified
	FROM todos t
	LEFT JOIN categories c ON c.id = t.category_id
	`

type todoRepository struct {
	pool *pgxpool.Pool
}

// NewTodoRepository returns a Postgres-backed implementation of TodoRepository.
func NewTodoRepository(pool *pgxpool.Pool) repository.TodoRepository {
	return &todoRepository{pool: pool}
}

func (r *todoRepository) GetByID(ctx context.Context, id int64) (*domain.Todo, error) {
	row := r.pool.QueryRow(ctx, todoSelect+`WHERE t.id = $1`, id)
	return scanTodo(row)
}

func (r *todoRepository) List(ctx context.Context, filter repository.TodoFilter) ([]domain.Todo, error) {
	query := todoSelect + `
	WHERE ($1::boolean IS NULL OR t.completed = $1)
	ORDER BY t.priority DESC, t.due_date ASC NULLS LAST, t.created_at DESC, t.id DESC
	`
	if filter.Completed != nil && *filter.Completed {
		query = todoSelect + `
	WHERE t.completed = $1
	ORDER BY t.updated_at DESC, t.id DESC
	`
	}

	var completed interface{}
	if filter.Completed != nil {
		completed = *filter.Completed
	}

	rows, err := r.pool.Query(ctx, query, completed)
	if err != nil {
		return nil, fmt.Errorf("listing todos: %w", err)
	}
	return collectTodos(rows)
}

func (r *todoRepository) Create(ctx context.Context, todo *domain.Todo) (*domain.Todo, error) {
	if todo == nil {
		return nil, domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO todos (task, description, completed, priority, due_date, category_id, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
	RETURNING id, created_at, updated_at
	`

	now := todo.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}

	if err := r.pool.QueryRow(ctx, query,
		todo.Task,
		nullString(todo.Description),
		todo.Completed,
		int(todo.Priority),
		nullDate(todo.DueDate),
		todo.CategoryID,
		now,
	).Scan(&todo.ID, &todo.CreatedAt, &todo.UpdatedAt); err != nil {
		return nil, fmt.Errorf("inserting todo: %w", err)
	}
	todo.DueDate = dateOnly(todo.DueDate)

	return todo, nil
}

func (r *todoRepository) Update(ctx context.Context, todo *domain.Todo) error {
	if todo == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE todos
	SET task = $2,
		description = $3,
		priority = $4,
		due_date = $5,
		category_id = $6,
		updated_at = $7
	WHERE id = $1
	RETURNING updated_at
	`

	now := todo.UpdatedAt
	if now.IsZero() {
		now = time.Now()
	}

	if err := r.pool.QueryRow(ctx, query,
		todo.ID,
		todo.Task,
		nullString(todo.Description),
		int(todo.Priority),
		nullDate(todo.DueDate),
		todo.CategoryID,
		now,
	).Scan(&todo.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrTodoNotFound
		}
		return fmt.Errorf("updating todo %d: %w", todo.ID, err)
	}

	return nil
}

func (r *todoRepository) SetCompleted(ctx context.Context, id int64, completed bool, at time.Time) error {
	const query = `UPDATE todos SET completed = $2, updated_at = $3 WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id, completed, at)
	if err != nil {
		return fmt.Errorf("updating todo %d completion: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTodoNotFound
	}
	return nil
}

func (r *todoRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM todos WHERE id = $1`
	if _, err := r.pool.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("deleting todo %d: %w", id, err)
	}
	return nil
}

func (r *todoRepository) DeleteCompleted(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM todos WHERE completed = TRUE`)
	if err != nil {
		return 0, fmt.Errorf("clearing completed todos: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *todoRepository) Stats(ctx context.Context, today time.Time) (domain.TodoStats, error) {
	const query = `
	SELECT COUNT(*),
	       COUNT(*) FILTER (WHERE completed),
	       COUNT(*) FILTER (WHERE NOT completed AND due_date IS NOT NULL AND due_date < $1)
	FROM todos
	`
	var stats domain.TodoStats
	if err := r.pool.QueryRow(ctx, query, domain.DateOf(today)).
		Scan(&stats.Total, &stats.Completed, &stats.Overdue); err != nil {
		return stats, fmt.Errorf("computing todo stats: %w", err)
	}
	stats.Pending = stats.Total - stats.Completed
	return stats, nil
}

func (r *todoRepository) CountActiveByPriority(ctx context.Context) ([]domain.PriorityStat, error) {
	const query = `
	SELECT priority, COUNT(*)
	FROM todos
	WHERE completed = FALSE
	GROUP BY priority
	ORDER BY priority DESC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("counting todos by priority: %w", err)
	}
	defer rows.Close()

	stats := []domain.PriorityStat{}
	for rows.Next() {
		var (
			level int
			stat  domain.PriorityStat
		)
		if err := rows.Scan(&level, &stat.Count); err != nil {
			return nil, err
		}
		stat.Priority = domain.Priority(level)
		stat.Label = stat.Priority.String()
		stats = append(stats, stat)
	}
	return stats, rows.Err()
}

func (r *todoRepository) ListDueUnnotified(ctx context.Context, day time.Time) ([]domain.Todo, error) {
	query := todoSelect + `
	WHERE t.due_date = $1
	  AND t.completed = FALSE
	  AND (t.last_notified IS NULL OR t.last_notified <> $1)
	ORDER BY t.priority DESC, t.created_at ASC, t.id ASC
	`
	rows, err := r.pool.Query(ctx, query, domain.DateOf(day))
	if err != nil {
		return nil, fmt.Errorf("selecting due todos: %w", err)
	}
	return collectTodos(rows)
}

func (r *todoRepository) MarkNotified(ctx context.Context, ids []int64, day time.Time) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`UPDATE todos SET last_notified = $2 WHERE id = ANY($1)`,
		ids, domain.DateOf(day),
	); err != nil {
		return fmt.Errorf("stamping last_notified: %w", err)
	}

	return tx.Commit(ctx)
}

func collectTodos(rows pgx.Rows) ([]domain.Todo, error) {
	defer rows.Close()

	todos := []domain.Todo{}
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, *todo)
	}
	return todos, rows.Err()
}

func scanTodo(row rowScanner) (*domain.Todo, error) {
	var (
		todo          domain.Todo
		description   *string
		priority      int
		categoryName  *string
		categoryColor *string
	)

	if err := row.Scan(
		&todo.ID,
		&todo.Task,
		&description,
		&todo.Completed,
		&priority,
		&todo.DueDate,
		&todo.CategoryID,
		&categoryName,
		&categoryColor,
		&todo.CreatedAt,
		&todo.UpdatedAt,
		&todo.LastNotified,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTodoNotFound
		}
		return nil, err
	}

	todo.Description = derefString(description)
	todo.Priority = domain.Priority(priority)
	todo.CategoryName = derefString(categoryName)
	todo.CategoryColor = derefString(categoryColor)
	todo.DueDate = dateOnly(todo.DueDate)
	todo.LastNotified = dateOnly(todo.LastNotified)

	return &todo, nil
}
