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

const subtaskColumns = `id, todo_id, title, completed, order_index, created_at`

type subtaskRepository struct {
	pool *pgxpool.Pool
}

// NewSubtaskRepository returns a Postgres-backed implementation of SubtaskRepository.
func NewSubtaskRepository(pool *pgxpool.Pool) repository.SubtaskRepository {
	return &subtaskRepository{pool: pool}
}

func (r *subtaskRepository) GetByID(ctx context.Context, id int64) (*domain.Subtask, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+subtaskColumns+` FROM subtasks WHERE id = $1`, id)
	return scanSubtask(row)
}

func (r *subtaskRepository) ListByTodo(ctx context.Context, todoID int64) ([]domain.Subtask, error) {
	grouped, err := r.ListByTodos(ctx, []int64{todoID})
	if err != nil {
		return nil, err
	}
	if subtasks, ok := grouped[todoID]; ok {
		return subtasks, nil
	}
	return []domain.Subtask{}, nil
}

func (r *subtaskRepository) ListByTodos(ctx context.Context, todoIDs []int64) (map[int64][]domain.Subtask, error) {
	grouped := make(map[int64][]domain.Subtask, len(todoIDs))
	if len(todoIDs) == 0 {
		return grouped, nil
	}

	rows, err := r.pool.Query(ctx, `
	SELECT `+subtaskColumns+`
	FROM subtasks
	WHERE todo_id = ANY($1)
	ORDER BY todo_id, order_index
	`, todoIDs)
	if err != nil {
		return nil, fmt.Errorf("listing subtasks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		subtask, err := scanSubtask(rows)
		if err != nil {
			return nil, err
		}
		grouped[subtask.TodoID] = append(grouped[subtask.TodoID], *subtask)
	}
	return grouped, rows.Err()
}

func (r *subtaskRepository) Create(ctx context.Context, subtask *domain.Subtask) (*domain.Subtask, error) {
	if subtask == nil {
		return nil, domain.ErrInvalidPayload
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// The counter lives on the parent row so indexes survive deletes.
	if err := tx.QueryRow(ctx, `
	UPDATE todos
	SET next_subtask_index = next_subtask_index + 1
	WHERE id = $1
	RETURNING next_subtask_index - 1
	`, subtask.TodoID).Scan(&subtask.OrderIndex); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTodoNotFound
		}
		return nil, fmt.Errorf("reserving subtask index: %w", err)
	}

	now := subtask.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}

	if err := tx.QueryRow(ctx, `
	INSERT INTO subtasks (todo_id, title, completed, order_index, created_at)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id, created_at
	`, subtask.TodoID, subtask.Title, subtask.Completed, subtask.OrderIndex, now,
	).Scan(&subtask.ID, &subtask.CreatedAt); err != nil {
		return nil, fmt.Errorf("inserting subtask: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return subtask, nil
}

func (r *subtaskRepository) SetCompleted(ctx context.Context, id int64, completed bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE subtasks SET completed = $2 WHERE id = $1`, id, completed)
	if err != nil {
		return fmt.Errorf("updating subtask %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSubtaskNotFound
	}
	return nil
}

func (r *subtaskRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM subtasks WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting subtask %d: %w", id, err)
	}
	return nil
}

func scanSubtask(row rowScanner) (*domain.Subtask, error) {
	var subtask domain.Subtask
	if err := row.Scan(
		&subtask.ID,
		&subtask.TodoID,
		&subtask.Title,
		&subtask.Completed,
		&subtask.OrderIndex,
		&subtask.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSubtaskNotFound
		}
		return nil, err
	}
	return &subtask, nil
}
