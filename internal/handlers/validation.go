package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/taskboxhq/taskbox/internal/services"
	apperrors "github.com/taskboxhq/taskbox/pkg/errors"
	"github.com/taskboxhq/taskbox/pkg/validator"
)

// bindAndValidate decodes the JSON body into target and applies the struct's
// validation tags. Unparseable JSON is a 400; failed rules are a 422 with
// per-field details.
func bindAndValidate(c *gin.Context, target interface{}) error {
	if err := c.ShouldBindJSON(target); err != nil {
		return apperrors.NewBadRequest("Request body must be valid JSON").WithInternal(err)
	}

	err := validator.ValidateStruct(target)
	if err == nil {
		return nil
	}

	var failures validator.ValidationErrors
	if errors.As(err, &failures) {
		details := make([]apperrors.FieldError, 0, len(failures))
		for _, failure := range failures {
			details = append(details, apperrors.FieldError{
				Field:   failure.Field,
				Message: describeFailure(failure),
			})
		}
		return apperrors.NewValidation("Invalid input data", details...)
	}

	return apperrors.Wrap(err, "validate request")
}

func describeFailure(failure validator.ValidationError) string {
	switch failure.Tag {
	case "required":
		return failure.Field + " is required"
	case "email":
		return failure.Field + " must be a valid email address"
	case "min":
		return failure.Field + " must be at least " + failure.Param
	case "max":
		return failure.Field + " must be at most " + failure.Param
	case "oneof":
		return failure.Field + " must be one of: " + failure.Param
	case "username":
		return failure.Field + " may only contain letters, digits, dots, underscores and hyphens"
	default:
		return failure.Field + " is invalid"
	}
}

// pathID parses a positive integer path parameter.
func pathID(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, apperrors.NewBadRequest("Invalid " + name + " parameter")
	}
	return uint(id), nil
}

// queryInt parses an optional integer query parameter with a fallback.
// Malformed listing parameters are validation failures, not bad requests.
func queryInt(c *gin.Context, name string, fallback int) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, invalidParam(name, "must be an integer")
	}
	return value, nil
}

// queryBool parses an optional boolean query parameter.
func queryBool(c *gin.Context, name string) (*bool, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, invalidParam(name, "must be true or false")
	}
	return &value, nil
}

// queryIntPtr parses an optional integer query parameter.
func queryIntPtr(c *gin.Context, name string) (*int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return nil, invalidParam(name, "must be an integer")
	}
	return &value, nil
}

// queryPage parses the page parameter. Omitted means the first page; an
// explicit value below 1 is rejected.
func queryPage(c *gin.Context) (int, error) {
	page, err := queryInt(c, "page", 1)
	if err != nil {
		return 0, err
	}
	if page < 1 {
		return 0, invalidParam("page", "must be greater than or equal to 1")
	}
	return page, nil
}

// querySize parses the size parameter. Omitted means the default page size;
// explicit values outside 1..100 are rejected.
func querySize(c *gin.Context) (int, error) {
	size, err := queryInt(c, "size", services.DefaultPageSize)
	if err != nil {
		return 0, err
	}
	if size < 1 {
		return 0, invalidParam("size", "must be greater than or equal to 1")
	}
	if size > services.MaxPageSize {
		return 0, invalidParam("size", "must be less than or equal to 100")
	}
	return size, nil
}

func invalidParam(name, requirement string) error {
	return apperrors.NewValidation("Invalid input data",
		apperrors.FieldError{Field: name, Message: name + " " + requirement})
}
