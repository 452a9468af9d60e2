package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/taskboxhq/taskbox/internal/auth"
	"github.com/taskboxhq/taskbox/internal/models"
	"github.com/taskboxhq/taskbox/internal/services"
	"github.com/taskboxhq/taskbox/internal/tasks"
	"github.com/taskboxhq/taskbox/pkg/metrics"
	"github.com/taskboxhq/taskbox/pkg/response"
)

// AuthHandler exposes the login endpoint.
type AuthHandler struct {
	users      *services.UserService
	jwt        *auth.JWTService
	activity   *services.ActivityService
	dispatcher *tasks.Dispatcher
}

// NewAuthHandler builds an AuthHandler.
func NewAuthHandler(users *services.UserService, jwt *auth.JWTService, activity *services.ActivityService, dispatcher *tasks.Dispatcher) *AuthHandler {
	return &AuthHandler{users: users, jwt: jwt, activity: activity, dispatcher: dispatcher}
}

// LoginRequest is the credentials payload.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the issued access token and the account it belongs to.
type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int64        `json:"expires_in"`
	User        *models.User `json:"user"`
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		response.Error(c, err)
		h.recordAttempt(c, req.Username, "failure")
		return
	}

	token, err := h.jwt.GenerateAccessToken(user.ID, user.Username)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		response.Error(c, err)
		return
	}

	metrics.AuthAttempts.WithLabelValues("success").Inc()
	response.Success(c, http.StatusOK, "auth.login_success", LoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(h.jwt.AccessTokenTTL() / time.Second),
		User:        user,
	})
	h.recordAttempt(c, user.Username, "success")
}

func (h *AuthHandler) recordAttempt(c *gin.Context, username, result string) {
	if h.dispatcher == nil || h.activity == nil {
		return
	}

	entry := services.ActivityEntry{
		Action:    "auth.login",
		Resource:  username,
		Result:    result,
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}

	h.dispatcher.Go("activity.log", func(ctx context.Context) error {
		return h.activity.Log(ctx, entry)
	})
}
