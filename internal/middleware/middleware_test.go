package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/taskboxhq/taskbox/internal/auth"
	"github.com/taskboxhq/taskbox/internal/cache"
	"github.com/taskboxhq/taskbox/internal/database"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newJWTService(t *testing.T) *auth.JWTService {
	t.Helper()
	svc, err := auth.NewJWTService(auth.JWTConfig{Secret: "test-secret", Issuer: "taskbox"})
	require.NoError(t, err)
	return svc
}

func protectedRouter(t *testing.T, jwtService *auth.JWTService) *gin.Engine {
	t.Helper()
	router := gin.New()
	router.GET("/protected", RequireAuth(jwtService), func(c *gin.Context) {
		id, _ := CurrentUserID(c)
		c.JSON(http.StatusOK, gin.H{"user_id": id})
	})
	return router
}

func TestRequireAuthRejectsMissingToken(t *testing.T) {
	router := protectedRouter(t, newJWTService(t))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuthRejectsMalformedHeader(t *testing.T) {
	router := protectedRouter(t, newJWTService(t))

	for _, header := range []string{"Token abc", "Bearer", "Bearer  "} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", header)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusUnauthorized, w.Code, "header %q", header)
	}
}

func TestRequireAuthAcceptsValidToken(t *testing.T) {
	jwtService := newJWTService(t)
	router := protectedRouter(t, jwtService)

	token, err := jwtService.GenerateAccessToken(42, "alice")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "42")
}

func TestRequireAuthRejectsExpiredToken(t *testing.T) {
	past := time.Now().Add(-2 * time.Hour)
	issuing, err := auth.NewJWTService(auth.JWTConfig{
		Secret:         "test-secret",
		Issuer:         "taskbox",
		AccessTokenTTL: time.Hour,
		Clock:          func() time.Time { return past },
	})
	require.NoError(t, err)

	token, err := issuing.GenerateAccessToken(7, "bob")
	require.NoError(t, err)

	router := protectedRouter(t, newJWTService(t))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRateLimitBlocksAfterBudget(t *testing.T) {
	db, err := database.Open(database.Config{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	store := cache.NewDatabaseStore(db)

	router := gin.New()
	router.GET("/ping", RateLimit(store, RateLimitConfig{Requests: 3, Window: time.Minute}), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestRecoveryReturnsEnvelope(t *testing.T) {
	router := gin.New()
	router.Use(Recovery())
	router.GET("/boom", func(c *gin.Context) {
		panic("kaboom")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Contains(t, w.Body.String(), "INTERNAL_SERVER_ERROR")
}

func TestCORSPreflight(t *testing.T) {
	router := gin.New()
	router.Use(CORS())
	router.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/x", nil))

	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
