package transport

import (
	"strconv"
	"strings"

	"github.com/valyala/fasthttp"

	"github.com/fastygo/tasktracker/domain"
	todoUC "github.com/fastygo/tasktracker/usecase/todo"
)

// TodoForm is the add/edit form as posted by the browser.
type TodoForm struct {
	Task        string
	Description string
	Priority    string
	DueDate     string
	CategoryID  string
}

// ParseTodoForm reads the todo fields from a urlencoded body.
func ParseTodoForm(args *fasthttp.Args) TodoForm {
	return TodoForm{
		Task:        string(args.Peek("task")),
		Description: string(args.Peek("description")),
		Priority:    string(args.Peek("priority")),
		DueDate:     string(args.Peek("due_date")),
		CategoryID:  string(args.Peek("category_id")),
	}
}

// Input validates the raw fields. A blank priority means low, a blank category none.
func (f TodoForm) Input() (todoUC.Input, error) {
	in := todoUC.Input{
		Task:        f.Task,
		Description: f.Description,
	}

	if p := strings.TrimSpace(f.Priority); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || !domain.Priority(n).Valid() {
			return in, domain.ErrInvalidPriority
		}
		in.Priority = domain.Priority(n)
	}

	due, err := domain.ParseDate(strings.TrimSpace(f.DueDate))
	if err != nil {
		return in, err
	}
	in.DueDate = due

	if c := strings.TrimSpace(f.CategoryID); c != "" {
		id, err := strconv.ParseInt(c, 10, 64)
		if err != nil || id <= 0 {
			return in, domain.WrapError(domain.ErrCodeInvalid, "invalid category", err)
		}
		in.CategoryID = &id
	}
	return in, nil
}

// SettingsForm is the email settings form.
type SettingsForm struct {
	Address      string
	Password     string
	Enabled      bool
	KeepPassword bool
}

func ParseSettingsForm(args *fasthttp.Args) SettingsForm {
	return SettingsForm{
		Address:      string(args.Peek("email_address")),
		Password:     string(args.Peek("email_password")),
		Enabled:      checked(args, "notifications_enabled"),
		KeepPassword: checked(args, "keep_password"),
	}
}

// checked reads an HTML checkbox, which browsers submit as "on" by default.
func checked(args *fasthttp.Args, name string) bool {
	raw := string(args.Peek(name))
	if raw == "on" {
		return true
	}
	v, _ := strconv.ParseBool(raw)
	return v
}

func (f SettingsForm) Settings() domain.EmailSettings {
	return domain.EmailSettings{Address: f.Address, Password: f.Password, Enabled: f.Enabled}
}
