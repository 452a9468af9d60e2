package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/taskboxhq/taskbox/internal/models"
	apperrors "github.com/taskboxhq/taskbox/pkg/errors"
)

const (
	// DefaultPageSize applies when a listing request omits the size parameter.
	DefaultPageSize = 10
	// MaxPageSize caps the number of items a single page may return.
	MaxPageSize = 100
)

// ErrTodoNotFound is returned when the requested item does not exist.
var ErrTodoNotFound = &apperrors.AppError{
	Code:       "TODO_NOT_FOUND",
	MessageKey: "error.not_found",
	Message:    "Todo not found",
	StatusCode: 404,
}

// sortColumns is the allowlist of sortable fields. Requests naming anything
// else fail validation.
var sortColumns = map[string]string{
	"created_at": "created_at",
	"updated_at": "updated_at",
	"priority":   "priority",
	"title":      "title",
}

// CreateTodoInput carries the fields accepted when creating an item.
type CreateTodoInput struct {
	Title       string
	Description string
	Priority    *int
	Completed   bool
	UserID      *uint
}

// UpdateTodoInput carries the full replacement state for an item.
type UpdateTodoInput struct {
	Title       string
	Description string
	Priority    int
	Completed   bool
}

// ListTodosOptions describes pagination, filtering and ordering of listings.
type ListTodosOptions struct {
	Page      int
	Size      int
	Completed *bool
	Priority  *int
	Search    string
	SortBy    string
	Order     string
}

// TodoService implements the todo item lifecycle.
type TodoService struct {
	db *gorm.DB
}

// NewTodoService builds a TodoService backed by the given database handle.
func NewTodoService(db *gorm.DB) *TodoService {
	return &TodoService{db: db}
}

// Create persists a new item. Priority defaults to the minimum when omitted.
func (s *TodoService) Create(ctx context.Context, input CreateTodoInput) (*models.Todo, error) {
	ctx = ensureContext(ctx)

	if err := validateTitle(input.Title); err != nil {
		return nil, err
	}
	if err := validateDescription(input.Description); err != nil {
		return nil, err
	}

	priority := models.MinPriority
	if input.Priority != nil {
		priority = *input.Priority
	}
	if err := validatePriority(priority); err != nil {
		return nil, err
	}

	todo := &models.Todo{
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Priority:    priority,
		Completed:   input.Completed,
		UserID:      input.UserID,
	}

	if err := s.db.WithContext(ctx).Create(todo).Error; err != nil {
		return nil, apperrors.Wrap(err, "create todo")
	}

	return todo, nil
}

// Get fetches a single item by identifier.
func (s *TodoService) Get(ctx context.Context, id uint) (*models.Todo, error) {
	ctx = ensureContext(ctx)

	var todo models.Todo
	err := s.db.WithContext(ctx).Take(&todo, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTodoNotFound
	}
	if err != nil {
		return nil, apperrors.Wrap(err, "get todo")
	}

	return &todo, nil
}

// List returns a page of items plus the total count matching the filters.
func (s *TodoService) List(ctx context.Context, opts ListTodosOptions) ([]models.Todo, int64, error) {
	ctx = ensureContext(ctx)

	page := opts.Page
	if page < 1 {
		page = 1
	}
	size := opts.Size
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}

	query := s.db.WithContext(ctx).Model(&models.Todo{})
	if opts.Completed != nil {
		query = query.Where("completed = ?", *opts.Completed)
	}
	if opts.Priority != nil {
		if err := validatePriority(*opts.Priority); err != nil {
			return nil, 0, err
		}
		query = query.Where("priority = ?", *opts.Priority)
	}
	if search := strings.TrimSpace(opts.Search); search != "" {
		query = query.Where("title LIKE ?", "%"+search+"%")
	}

	column := "created_at"
	if opts.SortBy != "" {
		mapped, ok := sortColumns[strings.ToLower(opts.SortBy)]
		if !ok {
			return nil, 0, apperrors.NewValidation("Invalid input data",
				apperrors.FieldError{Field: "sort_by", Message: "sort_by must be one of: created_at, updated_at, priority, title"})
		}
		column = mapped
	}

	direction := "DESC"
	switch strings.ToLower(opts.Order) {
	case "", "desc":
	case "asc":
		direction = "ASC"
	default:
		return nil, 0, apperrors.NewValidation("Invalid input data",
			apperrors.FieldError{Field: "order", Message: "order must be asc or desc"})
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "count todos")
	}

	var todos []models.Todo
	err := query.
		Order(column + " " + direction).
		Order("id ASC").
		Limit(size).
		Offset((page - 1) * size).
		Find(&todos).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "list todos")
	}

	return todos, total, nil
}

// Update replaces the mutable fields of an item.
func (s *TodoService) Update(ctx context.Context, id uint, input UpdateTodoInput) (*models.Todo, error) {
	ctx = ensureContext(ctx)

	if err := validateTitle(input.Title); err != nil {
		return nil, err
	}
	if err := validateDescription(input.Description); err != nil {
		return nil, err
	}
	if err := validatePriority(input.Priority); err != nil {
		return nil, err
	}

	todo, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	todo.Title = strings.TrimSpace(input.Title)
	todo.Description = input.Description
	todo.Priority = input.Priority
	todo.Completed = input.Completed

	if err := s.db.WithContext(ctx).Save(todo).Error; err != nil {
		return nil, apperrors.Wrap(err, "update todo")
	}

	return todo, nil
}

// Toggle flips the completion flag and returns the updated item.
func (s *TodoService) Toggle(ctx context.Context, id uint) (*models.Todo, error) {
	ctx = ensureContext(ctx)

	todo, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	todo.Completed = !todo.Completed
	if err := s.db.WithContext(ctx).Model(todo).Update("completed", todo.Completed).Error; err != nil {
		return nil, apperrors.Wrap(err, "toggle todo")
	}

	return todo, nil
}

// Delete removes an item. Deleting a missing item reports not found.
func (s *TodoService) Delete(ctx context.Context, id uint) error {
	ctx = ensureContext(ctx)

	res := s.db.WithContext(ctx).Delete(&models.Todo{}, "id = ?", id)
	if res.Error != nil {
		return apperrors.Wrap(res.Error, "delete todo")
	}
	if res.RowsAffected == 0 {
		return ErrTodoNotFound
	}

	return nil
}

func validateTitle(title string) error {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return apperrors.NewValidation("Invalid input data",
			apperrors.FieldError{Field: "title", Message: "title is required"})
	}
	if len(trimmed) > 200 {
		return apperrors.NewValidation("Invalid input data",
			apperrors.FieldError{Field: "title", Message: "title must be at most 200 characters"})
	}
	return nil
}

func validateDescription(description string) error {
	if len(description) > 1000 {
		return apperrors.NewValidation("Invalid input data",
			apperrors.FieldError{Field: "description", Message: "description must be at most 1000 characters"})
	}
	return nil
}

func validatePriority(priority int) error {
	if priority < models.MinPriority || priority > models.MaxPriority {
		return apperrors.NewValidation("Invalid input data",
			apperrors.FieldError{Field: "priority", Message: "priority must be between 1 and 5"})
	}
	return nil
}
