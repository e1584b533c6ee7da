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

const subtaskColumns = `id, todo_id, title, completed, order_index, created_at`

type subtaskRepository struct {
	db *sqlx.DB
}

// NewSubtaskRepository returns a SQLite-backed implementation of SubtaskRepository.
func NewSubtaskRepository(db *sqlx.DB) repository.SubtaskRepository {
	return &subtaskRepository{db: db}
}

func (r *subtaskRepository) GetByID(ctx context.Context, id int64) (*domain.Subtask, error) {
	var row subtaskRow
	if err := r.db.GetContext(ctx, &row, `SELECT `+subtaskColumns+` FROM subtasks WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSubtaskNotFound
		}
		return nil, fmt.Errorf("getting subtask %d: %w", id, err)
	}
	subtask, err := row.toDomain()
	if err != nil {
		return nil, err
	}
	return &subtask, nil
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

	query, args, err := sqlx.In(
		`SELECT `+subtaskColumns+` FROM subtasks WHERE todo_id IN (?) ORDER BY todo_id, order_index`,
		todoIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("building subtask query: %w", err)
	}

	var rows []subtaskRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("listing subtasks: %w", err)
	}
	for _, row := range rows {
		subtask, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		grouped[subtask.TodoID] = append(grouped[subtask.TodoID], subtask)
	}
	return grouped, nil
}

func (r *subtaskRepository) Create(ctx context.Context, subtask *domain.Subtask) (*domain.Subtask, error) {
	if subtask == nil {
		return nil, domain.ErrInvalidPayload
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// The counter lives on the parent row so indexes survive deletes.
	if err := tx.GetContext(ctx, &subtask.OrderIndex, `
		UPDATE todos
		SET next_subtask_index = next_subtask_index + 1
		WHERE id = ?
		RETURNING next_subtask_index - 1`,
		subtask.TodoID,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTodoNotFound
		}
		return nil, fmt.Errorf("reserving subtask index: %w", err)
	}

	createdAt, stamp := storedTime(subtask.CreatedAt)
	result, err := tx.ExecContext(ctx,
		`INSERT INTO subtasks (todo_id, title, completed, order_index, created_at) VALUES (?, ?, ?, ?, ?)`,
		subtask.TodoID, subtask.Title, subtask.Completed, subtask.OrderIndex, stamp,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting subtask: %w", err)
	}
	if subtask.ID, err = result.LastInsertId(); err != nil {
		return nil, fmt.Errorf("reading subtask id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	subtask.CreatedAt = createdAt
	return subtask, nil
}

func (r *subtaskRepository) SetCompleted(ctx context.Context, id int64, completed bool) error {
	result, err := r.db.ExecContext(ctx, `UPDATE subtasks SET completed = ? WHERE id = ?`, completed, id)
	if err != nil {
		return fmt.Errorf("updating subtask %d: %w", id, err)
	}
	return requireRow(result, domain.ErrSubtaskNotFound)
}

func (r *subtaskRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM subtasks WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting subtask %d: %w", id, err)
	}
	return nil
}
