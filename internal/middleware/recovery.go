package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/taskboxhq/taskbox/pkg/errors"
	"github.com/taskboxhq/taskbox/pkg/logger"
	"github.com/taskboxhq/taskbox/pkg/response"
)

// Recovery converts panics into a 500 envelope instead of dropping the
// connection.
func Recovery() gin.HandlerFunc {
	log := logger.WithModule("http")

	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic recovered",
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path),
					zap.Any("panic", r))
				response.Error(c, apperrors.ErrInternalServer)
				c.Abort()
			}
		}()
		c.Next()
	}
}
