package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/taskboxhq/taskbox/internal/auth"
	"github.com/taskboxhq/taskbox/internal/cache"
	"github.com/taskboxhq/taskbox/internal/database"
	"github.com/taskboxhq/taskbox/internal/tasks"
	"github.com/taskboxhq/taskbox/pkg/mail"
)

type envelope struct {
	Status    int             `json:"status"`
	Msg       string          `json:"msg"`
	Data      json.RawMessage `json:"data"`
	Meta      *struct {
		Page  int   `json:"page"`
		Size  int   `json:"size"`
		Total int64 `json:"total"`
	} `json:"meta"`
	ErrorCode string `json:"error_code"`
	Errors    []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"errors"`
}

func contextWithTimeout(t *testing.T) (context.Context, context.CancelFunc) {
	t.Helper()
	return context.WithTimeout(context.Background(), 2*time.Second)
}

func newTestRouter(t *testing.T) (*gin.Engine, *tasks.Dispatcher) {
	t.Helper()

	db, err := database.Open(database.Config{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	jwtService, err := auth.NewJWTService(auth.JWTConfig{Secret: "router-test-secret", Issuer: "taskbox"})
	require.NoError(t, err)

	mailer, err := mail.NewSMTPMailer(mail.SMTPSettings{Enabled: false})
	require.NoError(t, err)

	dispatcher := tasks.NewDispatcher(time.Second)

	router := NewRouter(Config{
		DB:            db,
		Store:         cache.NewDatabaseStore(db),
		JWT:           jwtService,
		Mailer:        mailer,
		Dispatcher:    dispatcher,
		OTPCodeLength: 4,
		OTPTTL:        time.Minute,
		ExposeOTPCode: true,
		HealthEnabled: true,
		Version:       "test",
	})
	return router, dispatcher
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, payload interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w, env
}

func registerAndLogin(t *testing.T, router http.Handler) string {
	t.Helper()

	w, _ := doJSON(t, router, http.MethodPost, "/api/users", "", map[string]interface{}{
		"username": "tester",
		"email":    "tester@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w, env := doJSON(t, router, http.MethodPost, "/api/auth/login", "", map[string]interface{}{
		"username": "tester",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var login struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &login))
	require.NotEmpty(t, login.AccessToken)
	require.Equal(t, "bearer", login.TokenType)
	return login.AccessToken
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "ok")
}

func TestUserRegistrationConflict(t *testing.T) {
	router, _ := newTestRouter(t)

	payload := map[string]interface{}{"username": "dup", "password": "password123"}

	w, _ := doJSON(t, router, http.MethodPost, "/api/users", "", payload)
	require.Equal(t, http.StatusCreated, w.Code)

	w, env := doJSON(t, router, http.MethodPost, "/api/users", "", payload)
	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, "USER_EXISTS", env.ErrorCode)
}

func TestUserRegistrationValidation(t *testing.T) {
	router, _ := newTestRouter(t)

	w, env := doJSON(t, router, http.MethodPost, "/api/users", "", map[string]interface{}{
		"username": "ab",
		"password": "short",
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.Equal(t, "VALIDATION_ERROR", env.ErrorCode)
	require.NotEmpty(t, env.Errors)

	w, env = doJSON(t, router, http.MethodPost, "/api/users", "", map[string]interface{}{
		"username": "no spaces allowed",
		"password": "password123",
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.Equal(t, "username", env.Errors[0].Field)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	router, _ := newTestRouter(t)
	registerAndLogin(t, router)

	w, env := doJSON(t, router, http.MethodPost, "/api/auth/login", "", map[string]interface{}{
		"username": "tester",
		"password": "wrongpassword",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "INVALID_CREDENTIALS", env.ErrorCode)
}

func TestTodoReadsArePublicMutationsAreNot(t *testing.T) {
	router, _ := newTestRouter(t)

	w, _ := doJSON(t, router, http.MethodGet, "/api/todos", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, env := doJSON(t, router, http.MethodPost, "/api/todos", "", map[string]interface{}{
		"title": "no token",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "UNAUTHORIZED", env.ErrorCode)
}

func TestTodoLifecycle(t *testing.T) {
	router, dispatcher := newTestRouter(t)
	token := registerAndLogin(t, router)

	w, env := doJSON(t, router, http.MethodPost, "/api/todos", token, map[string]interface{}{
		"title":    "write tests",
		"priority": 3,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		ID        uint `json:"id"`
		Priority  int  `json:"priority"`
		Completed bool `json:"completed"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.NotZero(t, created.ID)
	require.Equal(t, 3, created.Priority)

	path := fmt.Sprintf("/api/todos/%d", created.ID)

	w, _ = doJSON(t, router, http.MethodGet, path, token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, env = doJSON(t, router, http.MethodPatch, path+"/toggle", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var toggled struct {
		Completed bool `json:"completed"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &toggled))
	require.True(t, toggled.Completed)

	w, _ = doJSON(t, router, http.MethodPut, path, token, map[string]interface{}{
		"title":     "write better tests",
		"priority":  5,
		"completed": false,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = doJSON(t, router, http.MethodDelete, path, token, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w, env = doJSON(t, router, http.MethodDelete, path, token, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "TODO_NOT_FOUND", env.ErrorCode)

	drainCtx, cancel := contextWithTimeout(t)
	defer cancel()
	require.NoError(t, dispatcher.Drain(drainCtx))
}

func TestTodoListPaginationEnvelope(t *testing.T) {
	router, _ := newTestRouter(t)
	token := registerAndLogin(t, router)

	for i := 0; i < 12; i++ {
		w, _ := doJSON(t, router, http.MethodPost, "/api/todos", token, map[string]interface{}{
			"title": fmt.Sprintf("item %02d", i),
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w, env := doJSON(t, router, http.MethodGet, "/api/todos?page=2&size=5", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, env.Meta)
	require.Equal(t, 2, env.Meta.Page)
	require.Equal(t, 5, env.Meta.Size)
	require.Equal(t, int64(12), env.Meta.Total)

	var items []json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &items))
	require.Len(t, items, 5)
}

func TestTodoCreateValidation(t *testing.T) {
	router, _ := newTestRouter(t)
	token := registerAndLogin(t, router)

	w, env := doJSON(t, router, http.MethodPost, "/api/todos", token, map[string]interface{}{
		"title":    "x",
		"priority": 9,
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.Equal(t, "VALIDATION_ERROR", env.ErrorCode)
	require.Equal(t, "priority", env.Errors[0].Field)
}

func TestTodoListRejectsMalformedParams(t *testing.T) {
	router, _ := newTestRouter(t)

	w, env := doJSON(t, router, http.MethodGet, "/api/todos?page=abc", "", nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.Equal(t, "VALIDATION_ERROR", env.ErrorCode)
	require.Equal(t, "page", env.Errors[0].Field)
}

func TestTodoListRejectsOutOfRangePaging(t *testing.T) {
	router, _ := newTestRouter(t)

	cases := []struct {
		query string
		field string
	}{
		{"page=0", "page"},
		{"page=-1", "page"},
		{"size=0", "size"},
		{"size=101", "size"},
	}

	for _, tc := range cases {
		w, env := doJSON(t, router, http.MethodGet, "/api/todos?"+tc.query, "", nil)
		require.Equal(t, http.StatusUnprocessableEntity, w.Code, "query %s", tc.query)
		require.Equal(t, "VALIDATION_ERROR", env.ErrorCode)
		require.Equal(t, tc.field, env.Errors[0].Field)
	}

	// Boundary values stay accepted.
	w, _ := doJSON(t, router, http.MethodGet, "/api/todos?page=1&size=100", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestUserListRejectsOutOfRangePaging(t *testing.T) {
	router, _ := newTestRouter(t)
	token := registerAndLogin(t, router)

	for _, query := range []string{"page=0", "size=0", "size=101"} {
		w, env := doJSON(t, router, http.MethodGet, "/api/users?"+query, token, nil)
		require.Equal(t, http.StatusUnprocessableEntity, w.Code, "query %s", query)
		require.Equal(t, "VALIDATION_ERROR", env.ErrorCode)
	}
}

func TestOTPRequestAndVerifyFlow(t *testing.T) {
	router, dispatcher := newTestRouter(t)

	w, env := doJSON(t, router, http.MethodPost, "/api/otp/request", "", map[string]interface{}{
		"email": "flow@example.com",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var issued struct {
		Code      string `json:"code"`
		ExpiresIn int64  `json:"expires_in"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &issued))
	require.Len(t, issued.Code, 4)
	require.Equal(t, int64(60), issued.ExpiresIn)

	w, env = doJSON(t, router, http.MethodPost, "/api/otp/verify", "", map[string]interface{}{
		"email": "flow@example.com",
		"code":  issued.Code,
	})
	require.Equal(t, http.StatusOK, w.Code)

	// A consumed code cannot be verified twice.
	w, env = doJSON(t, router, http.MethodPost, "/api/otp/verify", "", map[string]interface{}{
		"email": "flow@example.com",
		"code":  issued.Code,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "OTP_NOT_FOUND", env.ErrorCode)

	drainCtx, cancel := contextWithTimeout(t)
	defer cancel()
	require.NoError(t, dispatcher.Drain(drainCtx))
}

func TestOTPVerifyMismatchKeepsCode(t *testing.T) {
	router, _ := newTestRouter(t)

	w, env := doJSON(t, router, http.MethodPost, "/api/otp/request", "", map[string]interface{}{
		"email": "retry@example.com",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var issued struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &issued))

	wrong := "0000"
	if wrong == issued.Code {
		wrong = "1111"
	}

	w, env = doJSON(t, router, http.MethodPost, "/api/otp/verify", "", map[string]interface{}{
		"email": "retry@example.com",
		"code":  wrong,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "OTP_MISMATCH", env.ErrorCode)

	w, _ = doJSON(t, router, http.MethodPost, "/api/otp/verify", "", map[string]interface{}{
		"email": "retry@example.com",
		"code":  issued.Code,
	})
	require.Equal(t, http.StatusOK, w.Code)
}

func TestUsersMeEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)
	token := registerAndLogin(t, router)

	w, env := doJSON(t, router, http.MethodGet, "/api/users/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var me struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &me))
	require.Equal(t, "tester", me.Username)
	// Password hashes never leave the API.
	require.Empty(t, me.Password)
}

func TestMalformedJSONIsBadRequest(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/users", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}
