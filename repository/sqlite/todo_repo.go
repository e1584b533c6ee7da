package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/repository"
)

const todoSelect = `
	SELECT t.id, t.task, t.description, t.completed, t.priority, t.due_date, t.category_id,
	       c.name AS category_name, c.color AS category_color,
	       t.created_at, t.updated_at, t.last_notified
	FROM todos t
	LEFT JOIN categories c ON c.id = t.category_id
	`

type todoRepository struct {
	db *sqlx.DB
}

// NewTodoRepository returns a SQLite-backed implementation of TodoRepository.
func NewTodoRepository(db *sqlx.DB) repository.TodoRepository {
	return &todoRepository{db: db}
}

func (r *todoRepository) GetByID(ctx context.Context, id int64) (*domain.Todo, error) {
	var row todoRow
	if err := r.db.GetContext(ctx, &row, todoSelect+`WHERE t.id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTodoNotFound
		}
		return nil, fmt.Errorf("getting todo %d: %w", id, err)
	}
	todo, err := row.toDomain()
	if err != nil {
		return nil, err
	}
	return &todo, nil
}

func (r *todoRepository) List(ctx context.Context, filter repository.TodoFilter) ([]domain.Todo, error) {
	query := todoSelect
	var args []interface{}

	switch {
	case filter.Completed == nil:
		query += `ORDER BY t.priority DESC, t.due_date ASC NULLS LAST, t.created_at DESC, t.id DESC`
	case *filter.Completed:
		query += `WHERE t.completed = 1 ORDER BY t.updated_at DESC, t.id DESC`
	default:
		query += `WHERE t.completed = 0 ORDER BY t.priority DESC, t.due_date ASC NULLS LAST, t.created_at DESC, t.id DESC`
	}

	return r.selectTodos(ctx, query, args...)
}

func (r *todoRepository) Create(ctx context.Context, todo *domain.Todo) (*domain.Todo, error) {
	if todo == nil {
		return nil, domain.ErrInvalidPayload
	}

	createdAt, stamp := storedTime(todo.CreatedAt)
	todo.CreatedAt = createdAt
	todo.UpdatedAt = createdAt

	result, err := r.db.ExecContext(ctx, `
		INSERT INTO todos (task, description, completed, priority, due_date, category_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		todo.Task,
		nullString(todo.Description),
		todo.Completed,
		int(todo.Priority),
		formatDate(todo.DueDate),
		nullInt(todo.CategoryID),
		stamp,
		stamp,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting todo: %w", err)
	}
	if todo.ID, err = result.LastInsertId(); err != nil {
		return nil, fmt.Errorf("reading todo id: %w", err)
	}
	return todo, nil
}

func (r *todoRepository) Update(ctx context.Context, todo *domain.Todo) error {
	if todo == nil {
		return domain.ErrInvalidPayload
	}
	if todo.UpdatedAt.IsZero() {
		todo.UpdatedAt = time.Now()
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE todos
		SET task = ?, description = ?, priority = ?, due_date = ?, category_id = ?, updated_at = ?
		WHERE id = ?`,
		todo.Task,
		nullString(todo.Description),
		int(todo.Priority),
		formatDate(todo.DueDate),
		nullInt(todo.CategoryID),
		formatTimestamp(todo.UpdatedAt),
		todo.ID,
	)
	if err != nil {
		return fmt.Errorf("updating todo %d: %w", todo.ID, err)
	}
	return requireRow(result, domain.ErrTodoNotFound)
}

func (r *todoRepository) SetCompleted(ctx context.Context, id int64, completed bool, at time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE todos SET completed = ?, updated_at = ? WHERE id = ?`,
		completed, formatTimestamp(at), id,
	)
	if err != nil {
		return fmt.Errorf("updating todo %d completion: %w", id, err)
	}
	return requireRow(result, domain.ErrTodoNotFound)
}

func (r *todoRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM todos WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting todo %d: %w", id, err)
	}
	return nil
}

func (r *todoRepository) DeleteCompleted(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM todos WHERE completed = 1`)
	if err != nil {
		return 0, fmt.Errorf("clearing completed todos: %w", err)
	}
	return result.RowsAffected()
}

func (r *todoRepository) Stats(ctx context.Context, today time.Time) (domain.TodoStats, error) {
	var row struct {
		Total     int `db:"total"`
		Completed int `db:"completed"`
		Overdue   int `db:"overdue"`
	}
	err := r.db.GetContext(ctx, &row, `
		SELECT COUNT(*) AS total,
		       COALESCE(SUM(CASE WHEN completed = 1 THEN 1 ELSE 0 END), 0) AS completed,
		       COALESCE(SUM(CASE WHEN completed = 0 AND due_date IS NOT NULL AND due_date < ? THEN 1 ELSE 0 END), 0) AS overdue
		FROM todos`,
		domain.DateOf(today).Format(domain.DateLayout),
	)
	if err != nil {
		return domain.TodoStats{}, fmt.Errorf("computing todo stats: %w", err)
	}
	return domain.TodoStats{
		Total:     row.Total,
		Completed: row.Completed,
		Pending:   row.Total - row.Completed,
		Overdue:   row.Overdue,
	}, nil
}

func (r *todoRepository) CountActiveByPriority(ctx context.Context) ([]domain.PriorityStat, error) {
	var rows []struct {
		Priority int `db:"priority"`
		Count    int `db:"count"`
	}
	if err := r.db.SelectContext(ctx, &rows, `
		SELECT priority, COUNT(*) AS count
		FROM todos
		WHERE completed = 0
		GROUP BY priority
		ORDER BY priority DESC`,
	); err != nil {
		return nil, fmt.Errorf("counting todos by priority: %w", err)
	}

	stats := make([]domain.PriorityStat, 0, len(rows))
	for _, row := range rows {
		p := domain.Priority(row.Priority)
		stats = append(stats, domain.PriorityStat{Priority: p, Label: p.String(), Count: row.Count})
	}
	return stats, nil
}

func (r *todoRepository) ListDueUnnotified(ctx context.Context, day time.Time) ([]domain.Todo, error) {
	date := domain.DateOf(day).Format(domain.DateLayout)
	return r.selectTodos(ctx, todoSelect+`
		WHERE t.due_date = ?
		  AND t.completed = 0
		  AND (t.last_notified IS NULL OR t.last_notified <> ?)
		ORDER BY t.priority DESC, t.created_at ASC, t.id ASC`,
		date, date,
	)
}

func (r *todoRepository) MarkNotified(ctx context.Context, ids []int64, day time.Time) error {
	if len(ids) == 0 {
		return nil
	}

	query, args, err := sqlx.In(
		`UPDATE todos SET last_notified = ? WHERE id IN (?)`,
		domain.DateOf(day).Format(domain.DateLayout), ids,
	)
	if err != nil {
		return fmt.Errorf("building notify update: %w", err)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, tx.Rebind(query), args...); err != nil {
		return fmt.Errorf("stamping last_notified: %w", err)
	}
	return tx.Commit()
}

func (r *todoRepository) selectTodos(ctx context.Context, query string, args ...interface{}) ([]domain.Todo, error) {
	var rows []todoRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("listing todos: %w", err)
	}

	todos := make([]domain.Todo, 0, len(rows))
	for _, row := range rows {
		todo, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		todos = append(todos, todo)
	}
	return todos, nil
}

func requireRow(result sql.Result, notFound error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
