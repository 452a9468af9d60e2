package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/taskboxhq/taskbox/pkg/errors"
)

func TestUserCreateHashesPassword(t *testing.T) {
	svc := NewUserService(newTestDB(t))

	user, err := svc.Create(context.Background(), CreateUserInput{
		Username: "alice",
		Email:    strPtr("Alice@Example.com"),
		Password: "correct horse",
	})
	require.NoError(t, err)
	require.NotZero(t, user.ID)
	require.NotEqual(t, "correct horse", user.Password)
	require.NotNil(t, user.Email)
	require.Equal(t, "alice@example.com", *user.Email)
}

func TestUserCreateDuplicateConflicts(t *testing.T) {
	svc := NewUserService(newTestDB(t))
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateUserInput{Username: "bob", Password: "password123"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateUserInput{Username: "bob", Password: "password456"})
	require.ErrorIs(t, err, ErrUserExists)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, 409, appErr.StatusCode)
}

func TestUserLookups(t *testing.T) {
	svc := NewUserService(newTestDB(t))
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateUserInput{
		Username: "carol",
		Email:    strPtr("carol@example.com"),
		Password: "password123",
	})
	require.NoError(t, err)

	byID, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "carol", byID.Username)

	byName, err := svc.GetByUsername(ctx, "carol")
	require.NoError(t, err)
	require.Equal(t, created.ID, byName.ID)

	byEmail, err := svc.GetByEmail(ctx, "CAROL@example.com")
	require.NoError(t, err)
	require.Equal(t, created.ID, byEmail.ID)

	_, err = svc.GetByUsername(ctx, "nobody")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserAuthenticate(t *testing.T) {
	svc := NewUserService(newTestDB(t))
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateUserInput{Username: "dave", Password: "password123"})
	require.NoError(t, err)

	user, err := svc.Authenticate(ctx, "dave", "password123")
	require.NoError(t, err)
	require.Equal(t, "dave", user.Username)

	_, err = svc.Authenticate(ctx, "dave", "wrong")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	// Unknown usernames report the same error as bad passwords.
	_, err = svc.Authenticate(ctx, "ghost", "password123")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestUserDeleteDetachesTodos(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db)
	todos := NewTodoService(db)
	ctx := context.Background()

	user, err := users.Create(ctx, CreateUserInput{Username: "erin", Password: "password123"})
	require.NoError(t, err)

	todo, err := todos.Create(ctx, CreateTodoInput{Title: "owned", UserID: &user.ID})
	require.NoError(t, err)

	require.NoError(t, users.Delete(ctx, user.ID))
	require.ErrorIs(t, users.Delete(ctx, user.ID), ErrUserNotFound)

	orphan, err := todos.Get(ctx, todo.ID)
	require.NoError(t, err)
	require.Nil(t, orphan.UserID)
}

func TestUserUpdatePassword(t *testing.T) {
	svc := NewUserService(newTestDB(t))
	ctx := context.Background()

	user, err := svc.Create(ctx, CreateUserInput{Username: "frank", Password: "password123"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, user.ID, UpdateUserInput{Password: strPtr("short")})
	require.Error(t, err)

	_, err = svc.Update(ctx, user.ID, UpdateUserInput{Password: strPtr("newpassword1")})
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, "frank", "newpassword1")
	require.NoError(t, err)
}
