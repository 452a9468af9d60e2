package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/taskboxhq/taskbox/internal/middleware"
	"github.com/taskboxhq/taskbox/internal/models"
	"github.com/taskboxhq/taskbox/internal/services"
	"github.com/taskboxhq/taskbox/internal/tasks"
	apperrors "github.com/taskboxhq/taskbox/pkg/errors"
	"github.com/taskboxhq/taskbox/pkg/response"
)

// UserHandler exposes the account endpoints.
type UserHandler struct {
	users      *services.UserService
	activity   *services.ActivityService
	dispatcher *tasks.Dispatcher
}

// NewUserHandler builds a UserHandler.
func NewUserHandler(users *services.UserService, activity *services.ActivityService, dispatcher *tasks.Dispatcher) *UserHandler {
	return &UserHandler{users: users, activity: activity, dispatcher: dispatcher}
}

// CreateUserRequest is the payload for registering an account.
type CreateUserRequest struct {
	Username string  `json:"username" validate:"required,username,min=3,max=64"`
	Email    *string `json:"email" validate:"omitempty,email,max=255"`
	Password string  `json:"password" validate:"required,min=8,max=128"`
}

// UpdateUserRequest carries optional account changes.
type UpdateUserRequest struct {
	Username *string `json:"username" validate:"omitempty,username,min=3,max=64"`
	Email    *string `json:"email" validate:"omitempty,email,max=255"`
	Password *string `json:"password" validate:"omitempty,min=8,max=128"`
}

// Create handles POST /api/users.
func (h *UserHandler) Create(c *gin.Context) {
	var req CreateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	user, err := h.users.Create(c.Request.Context(), services.CreateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "user.created", user)
	h.recordActivity(c, "user.create", user.ID)
}

// Get handles GET /api/users/:id.
func (h *UserHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "user.retrieved", user)
}

// GetByUsername handles GET /api/users/username/:username.
func (h *UserHandler) GetByUsername(c *gin.Context) {
	username := c.Param("username")

	user, err := h.users.GetByUsername(c.Request.Context(), username)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "user.retrieved", user)
}

// GetByEmail handles GET /api/users/email/:email.
func (h *UserHandler) GetByEmail(c *gin.Context) {
	email := c.Param("email")

	user, err := h.users.GetByEmail(c.Request.Context(), email)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "user.retrieved", user)
}

// Me handles GET /api/users/me for the authenticated caller.
func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "user.retrieved", user)
}

// List handles GET /api/users.
func (h *UserHandler) List(c *gin.Context) {
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

	users, total, err := h.users.List(c.Request.Context(), page, size)
	if err != nil {
		response.Error(c, err)
		return
	}

	if users == nil {
		users = []models.User{}
	}

	meta := &response.Meta{Page: page, Size: size, Total: total}
	response.SuccessWithMeta(c, http.StatusOK, "user.list_retrieved", users, meta)
}

// Update handles PUT /api/users/:id.
func (h *UserHandler) Update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req UpdateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	user, err := h.users.Update(c.Request.Context(), id, services.UpdateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "user.updated", user)
	h.recordActivity(c, "user.update", user.ID)
}

// Delete handles DELETE /api/users/:id.
func (h *UserHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.users.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
	h.recordActivity(c, "user.delete", id)
}

func (h *UserHandler) recordActivity(c *gin.Context, action string, subjectID uint) {
	if h.dispatcher == nil || h.activity == nil {
		return
	}

	entry := services.ActivityEntry{
		Action:    action,
		Resource:  "user",
		Result:    "success",
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		Metadata:  map[string]interface{}{"subject_id": subjectID},
	}
	if userID, ok := middleware.CurrentUserID(c); ok {
		entry.UserID = &userID
	}

	h.dispatcher.Go("activity.log", func(ctx context.Context) error {
		return h.activity.Log(ctx, entry)
	})
}
