package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestActivityLogAndList(t *testing.T) {
	svc := NewActivityService(newTestDB(t))
	ctx := context.Background()

	userID := uint(7)
	require.NoError(t, svc.Log(ctx, ActivityEntry{
		UserID:   &userID,
		Action:   "otp.request",
		Resource: "user@example.com",
		Result:   "success",
		Metadata: map[string]interface{}{"channel": "email"},
	}))
	require.NoError(t, svc.Log(ctx, ActivityEntry{
		Action: "todo.create",
		Result: "success",
	}))

	logs, total, err := svc.List(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, logs, 2)
	require.NotEmpty(t, logs[0].Action)
}

func TestActivityLogRequiresAction(t *testing.T) {
	svc := NewActivityService(newTestDB(t))

	err := svc.Log(context.Background(), ActivityEntry{Result: "success"})
	require.Error(t, err)
}
