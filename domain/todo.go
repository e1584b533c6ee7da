package domain

import (
	"strings"
	"time"
)

// Priority ranks a todo. Higher values sort first.
type Priority int

const (
	PriorityLow    Priority = 1
	PriorityMedium Priority = 2
	PriorityHigh   Priority = 3
)

// Valid reports whether p is one of the known levels.
func (p Priority) Valid() bool {
	return p >= PriorityLow && p <= PriorityHigh
}

func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	case PriorityLow:
		return "low"
	default:
		return "unknown"
	}
}

// Label is the capitalized form used in pages and emails.
func (p Priority) Label() string {
	s := p.String()
	return strings.ToUpper(s[:1]) + s[1:]
}

// Todo is a single tracked task.
type Todo struct {
	ID            int64      `json:"id"`
	Task          string     `json:"task"`
	Description   string     `json:"description,omitempty"`
	Completed     bool       `json:"completed"`
	Priority      Priority   `json:"priority"`
	DueDate       *time.Time `json:"due_date,omitempty"`
	CategoryID    *int64     `json:"category_id,omitempty"`
	CategoryName  string     `json:"category_name,omitempty"`
	CategoryColor string     `json:"category_color,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	LastNotified  *time.Time `json:"last_notified,omitempty"`
}

// Touch stamps the update time, initialising the creation time on first use.
func (t *Todo) Touch(now time.Time) {
	if t == nil {
		return
	}
	t.UpdatedAt = now
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
}

// IsOverdue reports whether an incomplete todo's due date lies strictly before today.
func (t *Todo) IsOverdue(today time.Time) bool {
	return t != nil && !t.Completed && t.DueDate != nil && t.DueDate.Before(DateOf(today))
}

// IsDueOn reports whether the todo falls due on the given calendar day.
func (t *Todo) IsDueOn(day time.Time) bool {
	return t != nil && t.DueDate != nil && SameDay(*t.DueDate, day)
}

// NotifiedOn reports whether a reminder was already sent for the given calendar day.
func (t *Todo) NotifiedOn(day time.Time) bool {
	return t != nil && t.LastNotified != nil && SameDay(*t.LastNotified, day)
}

// Subtask is an ordered checklist entry owned by a todo.
type Subtask struct {
	ID         int64     `json:"id"`
	TodoID     int64     `json:"todo_id"`
	Title      string    `json:"title"`
	Completed  bool      `json:"completed"`
	OrderIndex int       `json:"order_index"`
	CreatedAt  time.Time `json:"created_at"`
}

// TodoView is a todo with its subtasks attached, as shown on the dashboard.
type TodoView struct {
	Todo
	Subtasks []Subtask `json:"subtasks"`
	Progress int       `json:"progress"`
	Overdue  bool      `json:"overdue"`
}

// Progress returns the whole-percent share of completed subtasks, 0 when there are none.
func Progress(subtasks []Subtask) int {
	if len(subtasks) == 0 {
		return 0
	}
	done := 0
	for _, s := range subtasks {
		if s.Completed {
			done++
		}
	}
	return done * 100 / len(subtasks)
}
