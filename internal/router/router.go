package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/tasktracker/api/handler"
)

type Handlers struct {
	Auth     *apiHandler.AuthHandler
	Todo     *apiHandler.TodoHandler
	Category *apiHandler.CategoryHandler
	Settings *apiHandler.SettingsHandler
	Stats    *apiHandler.StatsHandler
	Health   *apiHandler.HealthHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Password gate
	r.GET("/login", handlers.Auth.LoginPage)
	r.POST("/login", handlers.Auth.Login)
	r.GET("/logout", handlers.Auth.Logout)

	// Todos
	r.GET("/", authMiddleware(handlers.Todo.Dashboard))
	r.POST("/add_todo", authMiddleware(handlers.Todo.Add))
	r.GET("/toggle_todo/{id}", authMiddleware(handlers.Todo.Toggle))
	r.GET("/delete_todo/{id}", authMiddleware(handlers.Todo.Delete))
	r.GET("/edit_todo/{id}", authMiddleware(handlers.Todo.EditPage))
	r.POST("/edit_todo/{id}", authMiddleware(handlers.Todo.Edit))
	r.GET("/clear_completed", authMiddleware(handlers.Todo.ClearCompleted))

	r.POST("/add_subtask/{todo_id}", authMiddleware(handlers.Todo.AddSubtask))
	r.GET("/toggle_subtask/{id}", authMiddleware(handlers.Todo.ToggleSubtask))
	r.GET("/delete_subtask/{id}", authMiddleware(handlers.Todo.DeleteSubtask))
	r.POST("/add_note/{todo_id}", authMiddleware(handlers.Todo.AddNote))

	// Categories
	r.GET("/categories", authMiddleware(handlers.Category.List))
	r.POST("/add_category", authMiddleware(handlers.Category.Add))
	r.GET("/delete_category/{id}", authMiddleware(handlers.Category.Delete))

	// Email reminders
	r.GET("/settings", authMiddleware(handlers.Settings.Page))
	r.POST("/settings", authMiddleware(handlers.Settings.Save))
	r.POST("/send_test_email", authMiddleware(handlers.Settings.SendTest))
	r.POST("/notify_now", authMiddleware(handlers.Settings.NotifyNow))

	r.GET("/api/todo_stats", authMiddleware(handlers.Stats.TodoStats))

	return r
}
