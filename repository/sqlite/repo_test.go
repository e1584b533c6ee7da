package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/internal/testutil"
	"github.com/fastygo/tasktracker/repository"
)

func day(s string) time.Time {
	d, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return d
}

func datePtr(s string) *time.Time {
	d := day(s)
	return &d
}

func createTodo(t *testing.T, store *repository.Store, todo domain.Todo) domain.Todo {
	t.Helper()
	if todo.Priority == 0 {
		todo.Priority = domain.PriorityLow
	}
	created, err := store.Todos.Create(context.Background(), &todo)
	if err != nil {
		t.Fatalf("Create(%q) error = %v", todo.Task, err)
	}
	return *created
}

func TestSeededCategories(t *testing.T) {
	store := testutil.NewStore(t)

	categories, err := store.Categories.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	want := map[string]string{
		"Work":     "#3b82f6",
		"Personal": "#10b981",
		"Shopping": "#f59e0b",
		"Health":   "#ef4444",
		"Learning": "#8b5cf6",
	}
	if len(categories) != len(want) {
		t.Fatalf("len(categories) = %d, want %d", len(categories), len(want))
	}
	for _, c := range categories {
		if want[c.Name] != c.Color {
			t.Errorf("category %q color = %q, want %q", c.Name, c.Color, want[c.Name])
		}
	}
}

func TestCategoryCreateDuplicate(t *testing.T) {
	store := testutil.NewStore(t)
	ctx := context.Background()

	created, err := store.Categories.Create(ctx, &domain.Category{Name: "Errands", Color: "#000000"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.ID == 0 {
		t.Fatalf("created.ID = 0, want assigned id")
	}

	_, err = store.Categories.Create(ctx, &domain.Category{Name: "Errands", Color: "#ffffff"})
	if !errors.Is(err, domain.ErrCategoryExists) {
		t.Fatalf("duplicate Create() error = %v, want %v", err, domain.ErrCategoryExists)
	}
}

func TestCategoryDeleteDetachesTodos(t *testing.T) {
	store := testutil.NewStore(t)
	ctx := context.Background()

	category, err := store.Categories.Create(ctx, &domain.Category{Name: "Garden", Color: "#00ff00"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	todo := createTodo(t, store, domain.Todo{Task: "Water plants", CategoryID: &category.ID})

	got, err := store.Todos.GetByID(ctx, todo.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.CategoryName != "Garden" {
		t.Fatalf("CategoryName = %q, want %q", got.CategoryName, "Garden")
	}

	if err := store.Categories.Delete(ctx, category.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	got, err = store.Todos.GetByID(ctx, todo.ID)
	if err != nil {
		t.Fatalf("GetByID() after delete error = %v", err)
	}
	if got.CategoryID != nil {
		t.Fatalf("CategoryID = %v, want nil", *got.CategoryID)
	}
}

func TestTodoDeleteCascades(t *testing.T) {
	store := testutil.NewStore(t)
	ctx := context.Background()

	todo := createTodo(t, store, domain.Todo{Task: "Plan trip"})
	subtask, err := store.Subtasks.Create(ctx, &domain.Subtask{TodoID: todo.ID, Title: "Book hotel"})
	if err != nil {
		t.Fatalf("Subtasks.Create() error = %v", err)
	}
	if _, err := store.Notes.Append(ctx, &domain.Note{TodoID: todo.ID, Content: "window seat"}); err != nil {
		t.Fatalf("Notes.Append() error = %v", err)
	}

	if err := store.Todos.Delete(ctx, todo.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	// Deleting twice is a no-op.
	if err := store.Todos.Delete(ctx, todo.ID); err != nil {
		t.Fatalf("second Delete() error = %v", err)
	}

	if _, err := store.Subtasks.GetByID(ctx, subtask.ID); !errors.Is(err, domain.ErrSubtaskNotFound) {
		t.Fatalf("Subtasks.GetByID() error = %v, want %v", err, domain.ErrSubtaskNotFound)
	}
	notes, err := store.Notes.ListByTodo(ctx, todo.ID)
	if err != nil {
		t.Fatalf("Notes.ListByTodo() error = %v", err)
	}
	if len(notes) != 0 {
		t.Fatalf("len(notes) = %d, want 0", len(notes))
	}
}

func TestTodoUpdateMissing(t *testing.T) {
	store := testutil.NewStore(t)

	err := store.Todos.Update(context.Background(), &domain.Todo{ID: 999, Task: "ghost", Priority: domain.PriorityLow})
	if !errors.Is(err, domain.ErrTodoNotFound) {
		t.Fatalf("Update() error = %v, want %v", err, domain.ErrTodoNotFound)
	}
	if _, err := store.Todos.GetByID(context.Background(), 999); !errors.Is(err, domain.ErrTodoNotFound) {
		t.Fatalf("GetByID() error = %v, want %v", err, domain.ErrTodoNotFound)
	}
}

func TestTodoListOrdering(t *testing.T) {
	store := testutil.NewStore(t)
	ctx := context.Background()
	base := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

	low := createTodo(t, store, domain.Todo{Task: "low", Priority: domain.PriorityLow, CreatedAt: base})
	undated := createTodo(t, store, domain.Todo{Task: "high undated", Priority: domain.PriorityHigh, CreatedAt: base.Add(time.Minute)})
	later := createTodo(t, store, domain.Todo{Task: "high later", Priority: domain.PriorityHigh, DueDate: datePtr("2024-06-10"), CreatedAt: base.Add(2 * time.Minute)})
	sooner := createTodo(t, store, domain.Todo{Task: "high sooner", Priority: domain.PriorityHigh, DueDate: datePtr("2024-06-05"), CreatedAt: base.Add(3 * time.Minute)})
	medOld := createTodo(t, store, domain.Todo{Task: "medium old", Priority: domain.PriorityMedium, CreatedAt: base.Add(4 * time.Minute)})
	medNew := createTodo(t, store, domain.Todo{Task: "medium new", Priority: domain.PriorityMedium, CreatedAt: base.Add(5 * time.Minute)})

	active := false
	todos, err := store.Todos.List(ctx, repository.TodoFilter{Completed: &active})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	want := []int64{sooner.ID, later.ID, undated.ID, medNew.ID, medOld.ID, low.ID}
	if len(todos) != len(want) {
		t.Fatalf("len(todos) = %d, want %d", len(todos), len(want))
	}
	for i, id := range want {
		if todos[i].ID != id {
			t.Errorf("todos[%d] = %q, want id %d", i, todos[i].Task, id)
		}
	}
}

func TestTodoListCompletedByUpdate(t *testing.T) {
	store := testutil.NewStore(t)
	ctx := context.Background()
	base := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

	first := createTodo(t, store, domain.Todo{Task: "first", CreatedAt: base})
	second := createTodo(t, store, domain.Todo{Task: "second", CreatedAt: base})
	createTodo(t, store, domain.Todo{Task: "open", CreatedAt: base})

	if err := store.Todos.SetCompleted(ctx, second.ID, true, base.Add(time.Hour)); err != nil {
		t.Fatalf("SetCompleted() error = %v", err)
	}
	if err := store.Todos.SetCompleted(ctx, first.ID, true, base.Add(2*time.Hour)); err != nil {
		t.Fatalf("SetCompleted() error = %v", err)
	}

	completed := true
	todos, err := store.Todos.List(ctx, repository.TodoFilter{Completed: &completed})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(todos) != 2 {
		t.Fatalf("len(todos) = %d, want 2", len(todos))
	}
	if todos[0].ID != first.ID || todos[1].ID != second.ID {
		t.Fatalf("order = [%d %d], want [%d %d]", todos[0].ID, todos[1].ID, first.ID, second.ID)
	}
	if !todos[0].UpdatedAt.Equal(base.Add(2 * time.Hour)) {
		t.Errorf("UpdatedAt = %v, want %v", todos[0].UpdatedAt, base.Add(2*time.Hour))
	}

	removed, err := store.Todos.DeleteCompleted(ctx)
	if err != nil {
		t.Fatalf("DeleteCompleted() error = %v", err)
	}
	if removed != 2 {
		t.Fatalf("DeleteCompleted() = %d, want 2", removed)
	}
}

func TestTodoStats(t *testing.T) {
	store := testutil.NewStore(t)
	ctx := context.Background()

	createTodo(t, store, domain.Todo{Task: "overdue", DueDate: datePtr("2024-05-30")})
	createTodo(t, store, domain.Todo{Task: "today", DueDate: datePtr("2024-06-01")})
	createTodo(t, store, domain.Todo{Task: "undated"})
	done := createTodo(t, store, domain.Todo{Task: "done overdue", DueDate: datePtr("2024-05-01")})
	if err := store.Todos.SetCompleted(ctx, done.ID, true, time.Now()); err != nil {
		t.Fatalf("SetCompleted() error = %v", err)
	}

	stats, err := store.Todos.Stats(ctx, day("2024-06-01"))
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	want := domain.TodoStats{Total: 4, Completed: 1, Pending: 3, Overdue: 1}
	if stats != want {
		t.Fatalf("Stats() = %+v, want %+v", stats, want)
	}
}

func TestStatisticsBreakdown(t *testing.T) {
	store := testutil.NewStore(t)
	ctx := context.Background()

	categories, err := store.Categories.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	ids := map[string]int64{}
	for _, c := range categories {
		ids[c.Name] = c.ID
	}
	work, health := ids["Work"], ids["Health"]

	createTodo(t, store, domain.Todo{Task: "a", CategoryID: &work, Priority: domain.PriorityHigh})
	createTodo(t, store, domain.Todo{Task: "b", CategoryID: &work, Priority: domain.PriorityLow})
	createTodo(t, store, domain.Todo{Task: "c", CategoryID: &health, Priority: domain.PriorityHigh})
	closed := createTodo(t, store, domain.Todo{Task: "d", CategoryID: &health, Priority: domain.PriorityMedium})
	if err := store.Todos.SetCompleted(ctx, closed.ID, true, time.Now()); err != nil {
		t.Fatalf("SetCompleted() error = %v", err)
	}

	byCategory, err := store.Categories.CountActive(ctx)
	if err != nil {
		t.Fatalf("CountActive() error = %v", err)
	}
	wantCategories := []domain.CategoryStat{
		{Name: "Work", Color: "#3b82f6", Count: 2},
		{Name: "Health", Color: "#ef4444", Count: 1},
	}
	if len(byCategory) != len(wantCategories) {
		t.Fatalf("CountActive() = %+v, want %+v", byCategory, wantCategories)
	}
	for i := range wantCategories {
		if byCategory[i] != wantCategories[i] {
			t.Errorf("CountActive()[%d] = %+v, want %+v", i, byCategory[i], wantCategories[i])
		}
	}

	byPriority, err := store.Todos.CountActiveByPriority(ctx)
	if err != nil {
		t.Fatalf("CountActiveByPriority() error = %v", err)
	}
	if len(byPriority) != 2 {
		t.Fatalf("CountActiveByPriority() = %+v, want 2 levels", byPriority)
	}
	if byPriority[0].Priority != domain.PriorityHigh || byPriority[0].Count != 2 {
		t.Errorf("byPriority[0] = %+v, want high x2", byPriority[0])
	}
	if byPriority[1].Priority != domain.PriorityLow || byPriority[1].Count != 1 {
		t.Errorf("byPriority[1] = %+v, want low x1", byPriority[1])
	}
}

func TestSubtaskOrderIndexNeverReused(t *testing.T) {
	store := testutil.NewStore(t)
	ctx := context.Background()
	todo := createTodo(t, store, domain.Todo{Task: "Move house"})

	var created []*domain.Subtask
	for _, title := range []string{"pack", "rent van", "clean"} {
		s, err := store.Subtasks.Create(ctx, &domain.Subtask{TodoID: todo.ID, Title: title})
		if err != nil {
			t.Fatalf("Create(%q) error = %v", title, err)
		}
		created = append(created, s)
	}
	for i, s := range created {
		if s.OrderIndex != i {
			t.Errorf("%q OrderIndex = %d, want %d", s.Title, s.OrderIndex, i)
		}
	}

	if err := store.Subtasks.Delete(ctx, created[2].ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	next, err := store.Subtasks.Create(ctx, &domain.Subtask{TodoID: todo.ID, Title: "return keys"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if next.OrderIndex != 3 {
		t.Fatalf("OrderIndex after delete = %d, want 3", next.OrderIndex)
	}

	if err := store.Subtasks.SetCompleted(ctx, created[0].ID, true); err != nil {
		t.Fatalf("SetCompleted() error = %v", err)
	}
	subtasks, err := store.Subtasks.ListByTodo(ctx, todo.ID)
	if err != nil {
		t.Fatalf("ListByTodo() error = %v", err)
	}
	titles := []string{"pack", "rent van", "return keys"}
	if len(subtasks) != len(titles) {
		t.Fatalf("len(subtasks) = %d, want %d", len(subtasks), len(titles))
	}
	for i, title := range titles {
		if subtasks[i].Title != title {
			t.Errorf("subtasks[%d] = %q, want %q", i, subtasks[i].Title, title)
		}
	}
	if !subtasks[0].Completed {
		t.Errorf("subtasks[0].Completed = false, want true")
	}
}

func TestSubtaskCreateMissingTodo(t *testing.T) {
	store := testutil.NewStore(t)

	_, err := store.Subtasks.Create(context.Background(), &domain.Subtask{TodoID: 42, Title: "orphan"})
	if !errors.Is(err, domain.ErrTodoNotFound) {
		t.Fatalf("Create() error = %v, want %v", err, domain.ErrTodoNotFound)
	}
}

func TestNotesNewestFirst(t *testing.T) {
	store := testutil.NewStore(t)
	ctx := context.Background()
	todo := createTodo(t, store, domain.Todo{Task: "Read book"})
	base := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	for i, content := range []string{"chapter 1", "chapter 2"} {
		note := &domain.Note{TodoID: todo.ID, Content: content, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		if _, err := store.Notes.Append(ctx, note); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	notes, err := store.Notes.ListByTodo(ctx, todo.ID)
	if err != nil {
		t.Fatalf("ListByTodo() error = %v", err)
	}
	if len(notes) != 2 || notes[0].Content != "chapter 2" {
		t.Fatalf("notes = %+v, want chapter 2 first", notes)
	}
	if notes[0].Type != domain.NoteTypeNote {
		t.Errorf("Type = %q, want %q", notes[0].Type, domain.NoteTypeNote)
	}

	if _, err := store.Notes.Append(ctx, &domain.Note{TodoID: 999, Content: "lost"}); !errors.Is(err, domain.ErrTodoNotFound) {
		t.Fatalf("Append() on missing todo error = %v, want %v", err, domain.ErrTodoNotFound)
	}
}

func TestDueUnnotifiedAndMark(t *testing.T) {
	store := testutil.NewStore(t)
	ctx := context.Background()
	today := day("2024-06-01")
	base := time.Date(2024, 5, 20, 8, 0, 0, 0, time.UTC)

	lowOld := createTodo(t, store, domain.Todo{Task: "low old", Priority: domain.PriorityLow, DueDate: datePtr("2024-06-01"), CreatedAt: base})
	high := createTodo(t, store, domain.Todo{Task: "high", Priority: domain.PriorityHigh, DueDate: datePtr("2024-06-01"), CreatedAt: base.Add(time.Hour)})
	lowNew := createTodo(t, store, domain.Todo{Task: "low new", Priority: domain.PriorityLow, DueDate: datePtr("2024-06-01"), CreatedAt: base.Add(2 * time.Hour)})
	createTodo(t, store, domain.Todo{Task: "tomorrow", DueDate: datePtr("2024-06-02")})
	createTodo(t, store, domain.Todo{Task: "undated"})
	done := createTodo(t, store, domain.Todo{Task: "done", DueDate: datePtr("2024-06-01")})
	if err := store.Todos.SetCompleted(ctx, done.ID, true, time.Now()); err != nil {
		t.Fatalf("SetCompleted() error = %v", err)
	}

	due, err := store.Todos.ListDueUnnotified(ctx, today)
	if err != nil {
		t.Fatalf("ListDueUnnotified() error = %v", err)
	}
	want := []int64{high.ID, lowOld.ID, lowNew.ID}
	if len(due) != len(want) {
		t.Fatalf("len(due) = %d, want %d", len(due), len(want))
	}
	for i, id := range want {
		if due[i].ID != id {
			t.Errorf("due[%d] = %q, want id %d", i, due[i].Task, id)
		}
	}

	if err := store.Todos.MarkNotified(ctx, want, today); err != nil {
		t.Fatalf("MarkNotified() error = %v", err)
	}

	due, err = store.Todos.ListDueUnnotified(ctx, today)
	if err != nil {
		t.Fatalf("ListDueUnnotified() error = %v", err)
	}
	if len(due) != 0 {
		t.Fatalf("len(due) after mark = %d, want 0", len(due))
	}

	got, err := store.Todos.GetByID(ctx, high.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if !got.NotifiedOn(today) {
		t.Fatalf("LastNotified = %v, want %s", got.LastNotified, today.Format(domain.DateLayout))
	}
}

func TestSettingsReplace(t *testing.T) {
	store := testutil.NewStore(t)
	ctx := context.Background()

	empty, err := store.Settings.LoadEmail(ctx)
	if err != nil {
		t.Fatalf("LoadEmail() error = %v", err)
	}
	if empty != (domain.EmailSettings{}) {
		t.Fatalf("LoadEmail() = %+v, want zero value", empty)
	}

	saved := domain.EmailSettings{Address: "me@example.com", Password: "app-pass", Enabled: true}
	if err := store.Settings.SaveEmail(ctx, saved); err != nil {
		t.Fatalf("SaveEmail() error = %v", err)
	}
	replaced := domain.EmailSettings{Address: "other@example.com"}
	if err := store.Settings.SaveEmail(ctx, replaced); err != nil {
		t.Fatalf("SaveEmail() error = %v", err)
	}

	got, err := store.Settings.LoadEmail(ctx)
	if err != nil {
		t.Fatalf("LoadEmail() error = %v", err)
	}
	if got != replaced {
		t.Fatalf("LoadEmail() = %+v, want %+v", got, replaced)
	}
}

func TestCreateReturnsStoredTimestamps(t *testing.T) {
	store := testutil.NewStore(t)
	ctx := context.Background()
	// Nanoseconds and a non-UTC zone are both lost in the column.
	at := time.Date(2024, 6, 1, 9, 30, 15, 123456789, time.FixedZone("CEST", 2*60*60))
	want := at.UTC().Truncate(time.Microsecond)

	todo := createTodo(t, store, domain.Todo{Task: "Stamp", CreatedAt: at})
	gotTodo, err := store.Todos.GetByID(ctx, todo.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}

	category, err := store.Categories.Create(ctx, &domain.Category{Name: "Errands", Color: "#000000", CreatedAt: at})
	if err != nil {
		t.Fatalf("Create(category) error = %v", err)
	}
	gotCategory, err := store.Categories.GetByID(ctx, category.ID)
	if err != nil {
		t.Fatalf("GetByID(category) error = %v", err)
	}

	subtask, err := store.Subtasks.Create(ctx, &domain.Subtask{TodoID: todo.ID, Title: "a", CreatedAt: at})
	if err != nil {
		t.Fatalf("Create(subtask) error = %v", err)
	}
	gotSubtask, err := store.Subtasks.GetByID(ctx, subtask.ID)
	if err != nil {
		t.Fatalf("GetByID(subtask) error = %v", err)
	}

	note, err := store.Notes.Append(ctx, &domain.Note{TodoID: todo.ID, Content: "n", CreatedAt: at})
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	notes, err := store.Notes.ListByTodo(ctx, todo.ID)
	if err != nil || len(notes) != 1 {
		t.Fatalf("ListByTodo() = %v, %v", notes, err)
	}

	tests := []struct {
		name             string
		returned, stored time.Time
	}{
		{"todo", todo.CreatedAt, gotTodo.CreatedAt},
		{"category", category.CreatedAt, gotCategory.CreatedAt},
		{"subtask", subtask.CreatedAt, gotSubtask.CreatedAt},
		{"note", note.CreatedAt, notes[0].CreatedAt},
	}
	for _, tt := range tests {
		if !tt.returned.Equal(want) || !tt.stored.Equal(want) {
			t.Errorf("%s CreatedAt returned %v, stored %v, want %v", tt.name, tt.returned, tt.stored, want)
		}
	}
}
