package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/taskboxhq/taskbox/internal/middleware"
	"github.com/taskboxhq/taskbox/internal/models"
	"github.com/taskboxhq/taskbox/internal/services"
	"github.com/taskboxhq/taskbox/internal/tasks"
	"github.com/taskboxhq/taskbox/pkg/metrics"
	"github.com/taskboxhq/taskbox/pkg/response"
)

// TodoHandler exposes the todo item endpoints.
type TodoHandler struct {
	todos      *services.TodoService
	activity   *services.ActivityService
	dispatcher *tasks.Dispatcher
}

// NewTodoHandler builds a TodoHandler.
func NewTodoHandler(todos *services.TodoService, activity *services.ActivityService, dispatcher *tasks.Dispatcher) *TodoHandler {
	return &TodoHandler{todos: todos, activity: activity, dispatcher: dispatcher}
}

// CreateTodoRequest is the payload for creating an item.
type CreateTodoRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=1000"`
	Priority    *int   `json:"priority" validate:"omitempty,min=1,max=5"`
	Completed   bool   `json:"completed"`
}

// UpdateTodoRequest is the payload for fully replacing an item.
type UpdateTodoRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=1000"`
	Priority    int    `json:"priority" validate:"required,min=1,max=5"`
	Completed   bool   `json:"completed"`
}

// Create handles POST /api/todos.
func (h *TodoHandler) Create(c *gin.Context) {
	var req CreateTodoRequest
	if err := bindAndValidate(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	input := services.CreateTodoInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Completed:   req.Completed,
	}
	if userID, ok := middleware.CurrentUserID(c); ok {
		input.UserID = &userID
	}

	todo, err := h.todos.Create(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	metrics.TodoMutations.WithLabelValues("create").Inc()
	response.Success(c, http.StatusCreated, "todo.created", todo)
	h.recordActivity(c, "todo.create", todo)
}

// Get handles GET /api/todos/:id.
func (h *TodoHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	todo, err := h.todos.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "todo.retrieved", todo)
}

// List handles GET /api/todos.
func (h *TodoHandler) List(c *gin.Context) {
	page, err := queryPage(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	size, err := querySize(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	completed, err := queryBool(c, "completed")
	if err != nil {
		response.Error(c, err)
		return
	}
	priority, err := queryIntPtr(c, "priority")
	if err != nil {
		response.Error(c, err)
		return
	}

	opts := services.ListTodosOptions{
		Page:      page,
		Size:      size,
		Completed: completed,
		Priority:  priority,
		Search:    c.Query("search"),
		SortBy:    c.DefaultQuery("sort_by", "created_at"),
		Order:     c.DefaultQuery("order", "desc"),
	}

	todos, total, err := h.todos.List(c.Request.Context(), opts)
	if err != nil {
		response.Error(c, err)
		return
	}

	if todos == nil {
		todos = []models.Todo{}
	}

	meta := &response.Meta{Page: page, Size: size, Total: total}
	response.SuccessWithMeta(c, http.StatusOK, "todo.list_retrieved", todos, meta)
}

// Update handles PUT /api/todos/:id.
func (h *TodoHandler) Update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req UpdateTodoRequest
	if err := bindAndValidate(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	todo, err := h.todos.Update(c.Request.Context(), id, services.UpdateTodoInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Completed:   req.Completed,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	metrics.TodoMutations.WithLabelValues("update").Inc()
	response.Success(c, http.StatusOK, "todo.updated", todo)
	h.recordActivity(c, "todo.update", todo)
}

// Toggle handles PATCH /api/todos/:id/toggle.
func (h *TodoHandler) Toggle(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	todo, err := h.todos.Toggle(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	metrics.TodoMutations.WithLabelValues("toggle").Inc()
	response.Success(c, http.StatusOK, "todo.toggled", todo)
	h.recordActivity(c, "todo.toggle", todo)
}

// Delete handles DELETE /api/todos/:id.
func (h *TodoHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.todos.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	metrics.TodoMutations.WithLabelValues("delete").Inc()
	response.NoContent(c)
	h.recordActivity(c, "todo.delete", &models.Todo{ID: id})
}

// recordActivity writes an audit record on the deferred task path, after the
// response is already on the wire.
func (h *TodoHandler) recordActivity(c *gin.Context, action string, todo *models.Todo) {
	if h.dispatcher == nil || h.activity == nil {
		return
	}

	entry := services.ActivityEntry{
		Action:    action,
		Resource:  "todo",
		Result:    "success",
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		Metadata:  map[string]interface{}{"todo_id": todo.ID},
	}
	if userID, ok := middleware.CurrentUserID(c); ok {
		entry.UserID = &userID
	}

	h.dispatcher.Go("activity.log", func(ctx context.Context) error {
		return h.activity.Log(ctx, entry)
	})
}
