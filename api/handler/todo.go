package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/tasktracker/api/transport"
	"github.com/fastygo/tasktracker/api/view"
	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/pkg/httpcontext"
	categoryUC "github.com/fastygo/tasktracker/usecase/category"
	dashboardUC "github.com/fastygo/tasktracker/usecase/dashboard"
	todoUC "github.com/fastygo/tasktracker/usecase/todo"
)

type TodoHandler struct {
	baseHandler
	todos      *todoUC.UseCase
	dashboard  *dashboardUC.UseCase
	categories *categoryUC.UseCase
}

func NewTodoHandler(
	todos *todoUC.UseCase,
	dashboard *dashboardUC.UseCase,
	categories *categoryUC.UseCase,
	adapter *httpcontext.Adapter,
	views *view.Renderer,
	logger *zap.Logger,
) *TodoHandler {
	return &TodoHandler{
		baseHandler: newBaseHandler(adapter, views, logger),
		todos:       todos,
		dashboard:   dashboard,
		categories:  categories,
	}
}

type editPage struct {
	Detail     *todoUC.Detail
	Categories []domain.Category
}

func (h *TodoHandler) Dashboard(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	board, err := h.dashboard.Build(stdCtx, string(ctx.QueryArgs().Peek("tab")))
	if err != nil {
		h.fail(ctx, stdCtx, err, "/")
		return
	}
	h.render(ctx, http.StatusOK, view.Dashboard, view.Page{Title: "Dashboard", Data: board})
}

func (h *TodoHandler) Add(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	in, err := transport.ParseTodoForm(ctx.PostArgs()).Input()
	if err != nil {
		h.fail(ctx, stdCtx, err, "/")
		return
	}
	if _, err := h.todos.Add(stdCtx, in); err != nil {
		h.fail(ctx, stdCtx, err, "/")
		return
	}
	h.redirectWith(ctx, "/", flashSuccess, "Todo added successfully!")
}

func (h *TodoHandler) Toggle(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	id, ok := pathID(ctx, "id")
	if !ok {
		h.redirectWith(ctx, "/", flashError, "Todo not found!")
		return
	}
	todo, err := h.todos.Toggle(stdCtx, id)
	if err != nil {
		h.fail(ctx, stdCtx, err, "/")
		return
	}
	if todo.Completed {
		h.redirectWith(ctx, "/", flashSuccess, "Todo completed! Great job!")
		return
	}
	h.redirectWith(ctx, "/", flashInfo, "Todo reopened! Back to work!")
}

func (h *TodoHandler) Delete(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if id, ok := pathID(ctx, "id"); ok {
		if err := h.todos.Delete(stdCtx, id); err != nil {
			h.fail(ctx, stdCtx, err, "/")
			return
		}
	}
	h.redirectWith(ctx, "/", flashInfo, "Todo deleted!")
}

func (h *TodoHandler) EditPage(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	id, ok := pathID(ctx, "id")
	if !ok {
		h.redirectWith(ctx, "/", flashError, "Todo not found!")
		return
	}
	detail, err := h.todos.Detail(stdCtx, id)
	if err != nil {
		h.fail(ctx, stdCtx, err, "/")
		return
	}
	categories, err := h.categories.List(stdCtx)
	if err != nil {
		h.fail(ctx, stdCtx, err, "/")
		return
	}
	h.render(ctx, http.StatusOK, view.EditTodo, view.Page{
		Title: "Edit task",
		Data:  editPage{Detail: detail, Categories: categories},
	})
}

func (h *TodoHandler) Edit(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	id, ok := pathID(ctx, "id")
	if !ok {
		h.redirectWith(ctx, "/", flashError, "Todo not found!")
		return
	}
	location := editPath(id)

	in, err := transport.ParseTodoForm(ctx.PostArgs()).Input()
	if err != nil {
		h.fail(ctx, stdCtx, err, location)
		return
	}
	if _, err := h.todos.Edit(stdCtx, id, in); err != nil {
		if errors.Is(err, domain.ErrTodoNotFound) {
			location = "/"
		}
		h.fail(ctx, stdCtx, err, location)
		return
	}
	h.redirectWith(ctx, "/", flashSuccess, "Todo updated successfully!")
}

func (h *TodoHandler) ClearCompleted(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	removed, err := h.todos.ClearCompleted(stdCtx)
	if err != nil {
		h.fail(ctx, stdCtx, err, "/?tab=completed")
		return
	}
	h.redirectWith(ctx, "/", flashInfo, fmt.Sprintf("Cleared %d completed todos!", removed))
}

func (h *TodoHandler) AddSubtask(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	todoID, ok := pathID(ctx, "todo_id")
	if !ok {
		h.redirectWith(ctx, "/", flashError, "Todo not found!")
		return
	}
	if _, err := h.todos.AddSubtask(stdCtx, todoID, string(ctx.PostArgs().Peek("title"))); err != nil {
		h.fail(ctx, stdCtx, err, fallbackFor(err, todoID))
		return
	}
	h.redirectWith(ctx, editPath(todoID), flashSuccess, "Subtask added!")
}

func (h *TodoHandler) ToggleSubtask(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	id, ok := pathID(ctx, "id")
	if !ok {
		h.redirectWith(ctx, "/", flashError, "Subtask not found!")
		return
	}
	subtask, err := h.todos.ToggleSubtask(stdCtx, id)
	if err != nil {
		h.fail(ctx, stdCtx, err, "/")
		return
	}
	redirect(ctx, back(ctx, editPath(subtask.TodoID)))
}

func (h *TodoHandler) DeleteSubtask(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	location := "/"
	if id, ok := pathID(ctx, "id"); ok {
		todoID, err := h.todos.DeleteSubtask(stdCtx, id)
		if err != nil {
			h.fail(ctx, stdCtx, err, "/")
			return
		}
		if todoID != 0 {
			location = editPath(todoID)
		}
	}
	h.redirectWith(ctx, location, flashInfo, "Subtask removed!")
}

func (h *TodoHandler) AddNote(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	todoID, ok := pathID(ctx, "todo_id")
	if !ok {
		h.redirectWith(ctx, "/", flashError, "Todo not found!")
		return
	}
	if _, err := h.todos.AddNote(stdCtx, todoID, string(ctx.PostArgs().Peek("content"))); err != nil {
		h.fail(ctx, stdCtx, err, fallbackFor(err, todoID))
		return
	}
	h.redirectWith(ctx, editPath(todoID), flashSuccess, "Note added!")
}

func editPath(id int64) string {
	return fmt.Sprintf("/edit_todo/%d", id)
}

// fallbackFor sends validation failures back to the edit page and a missing
// parent to the dashboard.
func fallbackFor(err error, todoID int64) string {
	if domain.IsDomainError(err, domain.ErrCodeNotFound) {
		return "/"
	}
	return editPath(todoID)
}

// back prefers a same-site Referer path so toggles from the dashboard stay there.
func back(ctx *fasthttp.RequestCtx, fallback string) string {
	referer := ctx.Request.Header.Referer()
	if len(referer) == 0 {
		return fallback
	}
	uri := fasthttp.AcquireURI()
	defer fasthttp.ReleaseURI(uri)
	if err := uri.Parse(nil, referer); err != nil {
		return fallback
	}
	if host := uri.Host(); len(host) > 0 && string(host) != string(ctx.Host()) {
		return fallback
	}
	path := string(uri.RequestURI())
	if path == "" || path[0] != '/' {
		return fallback
	}
	return path
}
