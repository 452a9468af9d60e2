package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/taskboxhq/taskbox/internal/models"
	"github.com/taskboxhq/taskbox/pkg/crypto"
	apperrors "github.com/taskboxhq/taskbox/pkg/errors"
)

// ErrUserNotFound is returned when the requested account does not exist.
var ErrUserNotFound = &apperrors.AppError{
	Code:       "USER_NOT_FOUND",
	MessageKey: "error.not_found",
	Message:    "User not found",
	StatusCode: 404,
}

// ErrUserExists is returned when a username or email is already taken.
var ErrUserExists = &apperrors.AppError{
	Code:       "USER_EXISTS",
	MessageKey: "error.conflict",
	Message:    "Username or email already registered",
	StatusCode: 409,
}

// CreateUserInput carries the fields accepted when registering an account.
type CreateUserInput struct {
	Username string
	Email    *string
	Password string
}

// UpdateUserInput carries optional account changes. Nil fields are untouched.
type UpdateUserInput struct {
	Username *string
	Email    *string
	Password *string
}

// UserService implements account management.
type UserService struct {
	db *gorm.DB
}

// NewUserService builds a UserService backed by the given database handle.
func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// Create registers a new account with a hashed password. Username and email
// collisions surface as a conflict.
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, apperrors.NewValidation("Invalid input data",
			apperrors.FieldError{Field: "username", Message: "username is required"})
	}
	if len(input.Password) < 8 {
		return nil, apperrors.NewValidation("Invalid input data",
			apperrors.FieldError{Field: "password", Message: "password must be at least 8 characters"})
	}

	hash, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, apperrors.Wrap(err, "hash password")
	}

	user := &models.User{
		Username: username,
		Email:    normalizeEmail(input.Email),
		Password: hash,
	}

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrUserExists
		}
		return nil, apperrors.Wrap(err, "create user")
	}

	return user, nil
}

// GetByID fetches an account by identifier.
func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getBy(ctx, "id = ?", id)
}

// GetByUsername fetches an account by its unique username.
func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getBy(ctx, "username = ?", strings.TrimSpace(username))
}

// GetByEmail fetches an account by its email address.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	normalized := normalizeEmail(&email)
	if normalized == nil {
		return nil, ErrUserNotFound
	}
	return s.getBy(ctx, "email = ?", *normalized)
}

func (s *UserService) getBy(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	ctx = ensureContext(ctx)

	var user models.User
	err := s.db.WithContext(ctx).Take(&user, query, arg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, apperrors.Wrap(err, "get user")
	}

	return &user, nil
}

// List returns a page of accounts plus the total count.
func (s *UserService) List(ctx context.Context, page, size int) ([]models.User, int64, error) {
	ctx = ensureContext(ctx)

	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "count users")
	}

	var users []models.User
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id ASC").
		Limit(size).
		Offset((page - 1) * size).
		Find(&users).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "list users")
	}

	return users, total, nil
}

// Update applies the provided account changes.
func (s *UserService) Update(ctx context.Context, id uint, input UpdateUserInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Username != nil {
		username := strings.TrimSpace(*input.Username)
		if username == "" {
			return nil, apperrors.NewValidation("Invalid input data",
				apperrors.FieldError{Field: "username", Message: "username is required"})
		}
		user.Username = username
	}
	if input.Email != nil {
		user.Email = normalizeEmail(input.Email)
	}
	if input.Password != nil {
		if len(*input.Password) < 8 {
			return nil, apperrors.NewValidation("Invalid input data",
				apperrors.FieldError{Field: "password", Message: "password must be at least 8 characters"})
		}
		hash, err := crypto.HashPassword(*input.Password)
		if err != nil {
			return nil, apperrors.Wrap(err, "hash password")
		}
		user.Password = hash
	}

	if err := s.db.WithContext(ctx).Save(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrUserExists
		}
		return nil, apperrors.Wrap(err, "update user")
	}

	return user, nil
}

// Delete removes an account. Items owned by the user are detached first so
// they survive as unowned entries.
func (s *UserService) Delete(ctx context.Context, id uint) error {
	ctx = ensureContext(ctx)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Todo{}).
			Where("user_id = ?", id).
			Update("user_id", nil).Error; err != nil {
			return apperrors.Wrap(err, "detach todos")
		}

		res := tx.Delete(&models.User{}, "id = ?", id)
		if res.Error != nil {
			return apperrors.Wrap(res.Error, "delete user")
		}
		if res.RowsAffected == 0 {
			return ErrUserNotFound
		}
		return nil
	})
}

// Authenticate verifies a username/password pair and returns the account.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.GetByUsername(ctx, username)
	if errors.Is(err, ErrUserNotFound) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !crypto.VerifyPassword(user.Password, password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	return user, nil
}

func normalizeEmail(email *string) *string {
	if email == nil {
		return nil
	}
	normalized := strings.ToLower(strings.TrimSpace(*email))
	if normalized == "" {
		return nil
	}
	return &normalized
}
