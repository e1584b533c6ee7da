package dashboard

import (
	"context"

	"go.uber.org/zap"

	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/repository"
	"github.com/fastygo/tasktracker/usecase"
)

type UseCase struct {
	todos      repository.TodoRepository
	categories repository.CategoryRepository
	subtasks   repository.SubtaskRepository
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
		clock:      clock,
		logger:     logger,
	}
}

// Build assembles the dashboard for a tab. Unknown tabs fall back to active.
// Stats always cover every todo regardless of the tab.
func (uc *UseCase) Build(ctx context.Context, tab string) (*domain.Dashboard, error) {
	if tab != domain.TabCompleted {
		tab = domain.TabActive
	}
	completed := tab == domain.TabCompleted
	today := uc.clock.Today()

	todos, err := uc.todos.List(ctx, repository.TodoFilter{Completed: &completed})
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(todos))
	for _, t := range todos {
		ids = append(ids, t.ID)
	}
	subtasks, err := uc.subtasks.ListByTodos(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]domain.TodoView, 0, len(todos))
	for i := range todos {
		items := subtasks[todos[i].ID]
		if items == nil {
			items = []domain.Subtask{}
		}
		views = append(views, domain.TodoView{
			Todo:     todos[i],
			Subtasks: items,
			Progress: domain.Progress(items),
			Overdue:  todos[i].IsOverdue(today),
		})
	}

	categories, err := uc.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	stats, err := uc.todos.Stats(ctx, today)
	if err != nil {
		return nil, err
	}

	return &domain.Dashboard{
		Tab:        tab,
		Todos:      views,
		Categories: categories,
		Stats:      stats,
		Today:      today,
	}, nil
}

// Statistics breaks down active todos by category and by priority.
func (uc *UseCase) Statistics(ctx context.Context) (*domain.StatsReport, error) {
	categories, err := uc.categories.CountActive(ctx)
	if err != nil {
		return nil, err
	}
	priorities, err := uc.todos.CountActiveByPriority(ctx)
	if err != nil {
		return nil, err
	}
	return &domain.StatsReport{Categories: categories, Priorities: priorities}, nil
}
