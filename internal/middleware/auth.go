package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/taskboxhq/taskbox/internal/auth"
	apperrors "github.com/taskboxhq/taskbox/pkg/errors"
	"github.com/taskboxhq/taskbox/pkg/response"
)

const (
	// ContextUserIDKey holds the authenticated user's identifier.
	ContextUserIDKey = "auth.user_id"
	// ContextUsernameKey holds the authenticated user's username.
	ContextUsernameKey = "auth.username"
)

// RequireAuth validates the Bearer token and stores the caller's identity in
// the request context. Requests without a valid token are rejected.
func RequireAuth(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			response.Error(c, apperrors.ErrUnauthorized)
			c.Abort()
			return
		}

		claims, err := jwtService.ValidateAccessToken(token)
		if err != nil {
			response.Error(c, apperrors.ErrUnauthorized.WithInternal(err))
			c.Abort()
			return
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextUsernameKey, claims.Username)
		c.Next()
	}
}

// CurrentUserID extracts the authenticated user's identifier, if present.
func CurrentUserID(c *gin.Context) (uint, bool) {
	value, exists := c.Get(ContextUserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := value.(uint)
	return id, ok && id != 0
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
