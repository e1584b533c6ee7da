package todo

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/repository"
	"github.com/fastygo/tasktracker/usecase"
)

// Input carries the editable fields of a todo.
type Input struct {
	Task        string
	Description string
	Priority    domain.Priority
	DueDate     *time.Time
	CategoryID  *int64
}

// Detail is a todo together with its checklist and history, as shown on the edit page.
type Detail struct {
	Todo     domain.Todo
	Subtasks []domain.Subtask
	Notes    []domain.Note
	Progress int
}

type UseCase struct {
	todos      repository.TodoRepository
	categories repository.CategoryRepository
	subtasks   repository.SubtaskRepository
	notes      repository.NoteRepository
	clock      usecase.Clock
	logger     *zap.Logger
}

func New(store *repository.Store, clock usecase.Clock, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		todos:      store.Todos,
		categories: store.Categories,
		subtasks:   store.Subtasks,
		notes:      store.Notes,
		clock:      clock,
		logger:     logger,
	}
}

func (uc *UseCase) Add(ctx context.Context, in Input) (*domain.Todo, error) {
	if err := uc.normalize(ctx, &in); err != nil {
		return nil, err
	}

	todo := &domain.Todo{
		Task:        in.Task,
		Description: in.Description,
		Priority:    in.Priority,
		DueDate:     in.DueDate,
		CategoryID:  in.CategoryID,
	}
	todo.Touch(uc.clock.Now())

	created, err := uc.todos.Create(ctx, todo)
	if err != nil {
		return nil, err
	}
	uc.record(ctx, created.ID, "Task created")
	return created, nil
}

func (uc *UseCase) Get(ctx context.Context, id int64) (*domain.Todo, error) {
	return uc.todos.GetByID(ctx, id)
}

func (uc *UseCase) Detail(ctx context.Context, id int64) (*Detail, error) {
	todo, err := uc.todos.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	subtasks, err := uc.subtasks.ListByTodo(ctx, id)
	if err != nil {
		return nil, err
	}
	notes, err := uc.notes.ListByTodo(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Detail{
		Todo:     *todo,
		Subtasks: subtasks,
		Notes:    notes,
		Progress: domain.Progress(subtasks),
	}, nil
}

func (uc *UseCase) Edit(ctx context.Context, id int64, in Input) (*domain.Todo, error) {
	todo, err := uc.todos.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := uc.normalize(ctx, &in); err != nil {
		return nil, err
	}

	todo.Task = in.Task
	todo.Description = in.Description
	todo.Priority = in.Priority
	todo.DueDate = in.DueDate
	todo.CategoryID = in.CategoryID
	todo.Touch(uc.clock.Now())

	if err := uc.todos.Update(ctx, todo); err != nil {
		return nil, err
	}
	uc.record(ctx, id, "Task updated")
	return todo, nil
}

// Toggle flips the completion flag. Read-modify-write; concurrent toggles of the
// same todo may interleave.
func (uc *UseCase) Toggle(ctx context.Context, id int64) (*domain.Todo, error) {
	todo, err := uc.todos.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	todo.Completed = !todo.Completed
	todo.Touch(uc.clock.Now())
	if err := uc.todos.SetCompleted(ctx, id, todo.Completed, todo.UpdatedAt); err != nil {
		return nil, err
	}

	if todo.Completed {
		uc.record(ctx, id, "Marked as completed")
	} else {
		uc.record(ctx, id, "Reopened")
	}
	return todo, nil
}

// Delete removes a todo with its subtasks and notes. Missing ids are ignored.
func (uc *UseCase) Delete(ctx context.Context, id int64) error {
	return uc.todos.Delete(ctx, id)
}

func (uc *UseCase) ClearCompleted(ctx context.Context) (int64, error) {
	removed, err := uc.todos.DeleteCompleted(ctx)
	if err != nil {
		return 0, err
	}
	uc.logger.Info("cleared completed todos", zap.Int64("count", removed))
	return removed, nil
}

func (uc *UseCase) AddSubtask(ctx context.Context, todoID int64, title string) (*domain.Subtask, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, domain.ErrEmptySubtaskTitle
	}

	subtask, err := uc.subtasks.Create(ctx, &domain.Subtask{
		TodoID:    todoID,
		Title:     title,
		CreatedAt: uc.clock.Now(),
	})
	if err != nil {
		return nil, err
	}
	uc.record(ctx, todoID, "Subtask added: "+title)
	return subtask, nil
}

func (uc *UseCase) ToggleSubtask(ctx context.Context, id int64) (*domain.Subtask, error) {
	subtask, err := uc.subtasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	subtask.Completed = !subtask.Completed
	if err := uc.subtasks.SetCompleted(ctx, id, subtask.Completed); err != nil {
		return nil, err
	}

	state := "reopened"
	if subtask.Completed {
		state = "completed"
	}
	uc.record(ctx, subtask.TodoID, "Subtask "+state+": "+subtask.Title)
	return subtask, nil
}

// DeleteSubtask removes a subtask and returns its parent id, or 0 when it was already gone.
func (uc *UseCase) DeleteSubtask(ctx context.Context, id int64) (int64, error) {
	subtask, err := uc.subtasks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrSubtaskNotFound) {
			return 0, nil
		}
		return 0, err
	}
	if err := uc.subtasks.Delete(ctx, id); err != nil {
		return 0, err
	}
	return subtask.TodoID, nil
}

func (uc *UseCase) AddNote(ctx context.Context, todoID int64, content string) (*domain.Note, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, domain.ErrEmptyNote
	}
	return uc.notes.Append(ctx, &domain.Note{
		TodoID:    todoID,
		Type:      domain.NoteTypeNote,
		Content:   content,
		CreatedAt: uc.clock.Now(),
	})
}

func (uc *UseCase) normalize(ctx context.Context, in *Input) error {
	in.Task = strings.TrimSpace(in.Task)
	in.Description = strings.TrimSpace(in.Description)
	if in.Task == "" {
		return domain.ErrEmptyTask
	}
	if in.Priority == 0 {
		in.Priority = domain.PriorityLow
	}
	if !in.Priority.Valid() {
		return domain.ErrInvalidPriority
	}
	if in.CategoryID != nil {
		if _, err := uc.categories.GetByID(ctx, *in.CategoryID); err != nil {
			return err
		}
	}
	return nil
}

// record appends an activity entry. History is best effort and never fails the caller.
func (uc *UseCase) record(ctx context.Context, todoID int64, content string) {
	_, err := uc.notes.Append(ctx, &domain.Note{
		TodoID:    todoID,
		Type:      domain.NoteTypeActivity,
		Content:   content,
		CreatedAt: uc.clock.Now(),
	})
	if err != nil {
		uc.logger.Warn("failed to record activity", zap.Int64("todo_id", todoID), zap.Error(err))
	}
}
