package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/taskboxhq/taskbox/pkg/errors"
	"github.com/taskboxhq/taskbox/pkg/i18n"
)

// Response defines the base API payload shared by every endpoint.
type Response struct {
	Status    int                    `json:"status"`
	Msg       string                 `json:"msg"`
	Data      interface{}            `json:"data,omitempty"`
	Meta      *Meta                  `json:"meta,omitempty"`
	ErrorCode string                 `json:"error_code,omitempty"`
	Errors    []appErrors.FieldError `json:"errors,omitempty"`
}

// Meta describes pagination metadata attached to list responses.
type Meta struct {
	Page  int   `json:"page"`
	Size  int   `json:"size"`
	Total int64 `json:"total"`
}

// Success writes a JSON success envelope, resolving msgKey against the
// request's Accept-Language header.
func Success(c *gin.Context, statusCode int, msgKey string, data interface{}) {
	c.JSON(statusCode, Response{
		Status: statusCode,
		Msg:    localize(c, msgKey, "Success"),
		Data:   data,
	})
}

// SuccessWithMeta writes a JSON success envelope including pagination metadata.
func SuccessWithMeta(c *gin.Context, statusCode int, msgKey string, data interface{}, meta *Meta) {
	c.JSON(statusCode, Response{
		Status: statusCode,
		Msg:    localize(c, msgKey, "Success"),
		Data:   data,
		Meta:   meta,
	})
}

// NoContent writes an empty 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error writes a JSON error envelope derived from an AppError.
func Error(c *gin.Context, err error) {
	if err == nil {
		err = appErrors.ErrInternalServer
	}

	appErr := appErrors.FromError(err)
	status := appErr.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}

	c.JSON(status, Response{
		Status:    status,
		Msg:       localize(c, appErr.MessageKey, appErr.Message),
		ErrorCode: appErr.Code,
		Errors:    appErr.Details,
	})
}

func localize(c *gin.Context, key, fallback string) string {
	lang := ""
	if c != nil && c.Request != nil {
		lang = c.Request.Header.Get("Accept-Language")
	}
	return i18n.Localize(lang, key, fallback)
}
