package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/fastygo/tasktracker/domain"
)

// Timestamps are stored as fixed-width UTC text so they sort lexically.
const (
	timestampLayout = "2006-01-02 15:04:05.000000"
	timestampParse  = "2006-01-02 15:04:05.999999999"
)

type todoRow struct {
	ID            int64          `db:"id"`
	Task          string         `db:"task"`
	Description   sql.NullString `db:"description"`
	Completed     bool           `db:"completed"`
	Priority      int            `db:"priority"`
	DueDate       sql.NullString `db:"due_date"`
	CategoryID    sql.NullInt64  `db:"category_id"`
	CategoryName  sql.NullString `db:"category_name"`
	CategoryColor sql.NullString `db:"category_color"`
	CreatedAt     string         `db:"created_at"`
	UpdatedAt     string         `db:"updated_at"`
	LastNotified  sql.NullString `db:"last_notified"`
}

func (r todoRow) toDomain() (domain.Todo, error) {
	todo := domain.Todo{
		ID:            r.ID,
		Task:          r.Task,
		Description:   r.Description.String,
		Completed:     r.Completed,
		Priority:      domain.Priority(r.Priority),
		CategoryName:  r.CategoryName.String,
		CategoryColor: r.CategoryColor.String,
	}
	if r.CategoryID.Valid {
		id := r.CategoryID.Int64
		todo.CategoryID = &id
	}

	var err error
	if todo.DueDate, err = parseDate(r.DueDate); err != nil {
		return todo, fmt.Errorf("todo %d due_date: %w", r.ID, err)
	}
	if todo.LastNotified, err = parseDate(r.LastNotified); err != nil {
		return todo, fmt.Errorf("todo %d last_notified: %w", r.ID, err)
	}
	if todo.CreatedAt, err = parseTimestamp(r.CreatedAt); err != nil {
		return todo, fmt.Errorf("todo %d created_at: %w", r.ID, err)
	}
	if todo.UpdatedAt, err = parseTimestamp(r.UpdatedAt); err != nil {
		return todo, fmt.Errorf("todo %d updated_at: %w", r.ID, err)
	}
	return todo, nil
}

type categoryRow struct {
	ID        int64  `db:"id"`
	Name      string `db:"name"`
	Color     string `db:"color"`
	CreatedAt string `db:"created_at"`
}

func (r categoryRow) toDomain() (domain.Category, error) {
	createdAt, err := parseTimestamp(r.CreatedAt)
	if err != nil {
		return domain.Category{}, fmt.Errorf("category %d created_at: %w", r.ID, err)
	}
	return domain.Category{ID: r.ID, Name: r.Name, Color: r.Color, CreatedAt: createdAt}, nil
}

type subtaskRow struct {
	ID         int64  `db:"id"`
	TodoID     int64  `db:"todo_id"`
	Title      string `db:"title"`
	Completed  bool   `db:"completed"`
	OrderIndex int    `db:"order_index"`
	CreatedAt  string `db:"created_at"`
}

func (r subtaskRow) toDomain() (domain.Subtask, error) {
	createdAt, err := parseTimestamp(r.CreatedAt)
	if err != nil {
		return domain.Subtask{}, fmt.Errorf("subtask %d created_at: %w", r.ID, err)
	}
	return domain.Subtask{
		ID:         r.ID,
		TodoID:     r.TodoID,
		Title:      r.Title,
		Completed:  r.Completed,
		OrderIndex: r.OrderIndex,
		CreatedAt:  createdAt,
	}, nil
}

type noteRow struct {
	ID        int64  `db:"id"`
	TodoID    int64  `db:"todo_id"`
	NoteType  string `db:"note_type"`
	Content   string `db:"content"`
	CreatedAt string `db:"created_at"`
}

func (r noteRow) toDomain() (domain.Note, error) {
	createdAt, err := parseTimestamp(r.CreatedAt)
	if err != nil {
		return domain.Note{}, fmt.Errorf("note %d created_at: %w", r.ID, err)
	}
	return domain.Note{
		ID:        r.ID,
		TodoID:    r.TodoID,
		Type:      domain.NoteType(r.NoteType),
		Content:   r.Content,
		CreatedAt: createdAt,
	}, nil
}

func formatTimestamp(t time.Time) string {
	_, stamp := storedTime(t)
	return stamp
}

// storedTime returns t as it reads back from the database, along with its
// column text. A zero t means now.
func storedTime(t time.Time) (time.Time, string) {
	if t.IsZero() {
		t = time.Now()
	}
	t = t.UTC().Truncate(time.Microsecond)
	return t, t.Format(timestampLayout)
}

func parseTimestamp(value string) (time.Time, error) {
	return time.ParseInLocation(timestampParse, value, time.UTC)
}

func formatDate(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.Format(domain.DateLayout)
}

func parseDate(value sql.NullString) (*time.Time, error) {
	if !value.Valid || value.String == "" {
		return nil, nil
	}
	parsed, err := time.Parse(domain.DateLayout, value.String)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullInt(id *int64) interface{} {
	if id == nil {
		return nil
	}
	return *id
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	code := sqliteErr.Code()
	return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
		(code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(sqliteErr.Error(), "UNIQUE"))
}
