package auth

import (
	"LinkShield-Backend/internal/domain"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupMiddleware(t *testing.T) (*Middleware, *JWTService) {
	t.Helper()
	jwtService := testJWTService(15 * time.Minute)
	return NewMiddleware(jwtService, zap.NewNop()), jwtService
}

func bearerFor(t *testing.T, jwtService *JWTService, role domain.Role) string {
	t.Helper()
	token, err := jwtService.GenerateAccessToken(testUser(role))
	require.NoError(t, err)
	return "Bearer " + token
}

func TestMiddleware_RequireAuth(t *testing.T) {
	t.Run("valid_token_puts_session_in_context", func(t *testing.T) {
		mw, jwtService := setupMiddleware(t)

		var got *Session
		handler := mw.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
			got, _ = SessionFromContext(r.Context())
		})

		req := httptest.NewRequest(http.MethodGet, "/api/links", nil)
		req.Header.Set("Authorization", bearerFor(t, jwtService, domain.RoleUser))
		rec := httptest.NewRecorder()

		handler(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, got)
		assert.Equal(t, "user-123", got.UserID)
		assert.Equal(t, domain.RoleUser, got.Role)
	})

	t.Run("missing_token_is_401", func(t *testing.T) {
		mw, _ := setupMiddleware(t)

		handler := mw.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not run")
		})

		req := httptest.NewRequest(http.MethodGet, "/api/links", nil)
		rec := httptest.NewRecorder()

		handler(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), `"success":false`)
	})

	t.Run("expired_token_is_401", func(t *testing.T) {
		expiredJWT := testJWTService(-time.Minute)
		mw := NewMiddleware(expiredJWT, zap.NewNop())

		handler := mw.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not run")
		})

		req := httptest.NewRequest(http.MethodGet, "/api/links", nil)
		req.Header.Set("Authorization", bearerFor(t, expiredJWT, domain.RoleUser))
		rec := httptest.NewRecorder()

		handler(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Token expired.")
	})
}

func TestMiddleware_OptionalAuth(t *testing.T) {
	t.Run("anonymous_passes_without_session", func(t *testing.T) {
		mw, _ := setupMiddleware(t)

		var hasSession bool
		handler := mw.OptionalAuth(func(w http.ResponseWriter, r *http.Request) {
			_, hasSession = SessionFromContext(r.Context())
		})

		req := httptest.NewRequest(http.MethodPost, "/api/shorten", nil)
		rec := httptest.NewRecorder()

		handler(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.False(t, hasSession)
	})

	t.Run("valid_token_attaches_session", func(t *testing.T) {
		mw, jwtService := setupMiddleware(t)

		var got *Session
		handler := mw.OptionalAuth(func(w http.ResponseWriter, r *http.Request) {
			got, _ = SessionFromContext(r.Context())
		})

		req := httptest.NewRequest(http.MethodPost, "/api/shorten", nil)
		req.Header.Set("Authorization", bearerFor(t, jwtService, domain.RoleAdmin))
		rec := httptest.NewRecorder()

		handler(rec, req)

		require.NotNil(t, got)
		assert.True(t, got.IsAdmin())
	})
}

func TestMiddleware_RequireAdmin(t *testing.T) {
	t.Run("admin_allowed", func(t *testing.T) {
		mw, jwtService := setupMiddleware(t)

		called := false
		handler := mw.RequireAdmin(func(w http.ResponseWriter, r *http.Request) {
			called = true
		})

		req := httptest.NewRequest(http.MethodGet, "/api/admin/urls", nil)
		req.Header.Set("Authorization", bearerFor(t, jwtService, domain.RoleAdmin))
		rec := httptest.NewRecorder()

		handler(rec, req)

		assert.True(t, called)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("regular_user_is_403", func(t *testing.T) {
		mw, jwtService := setupMiddleware(t)

		handler := mw.RequireAdmin(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not run")
		})

		req := httptest.NewRequest(http.MethodGet, "/api/admin/urls", nil)
		req.Header.Set("Authorization", bearerFor(t, jwtService, domain.RoleUser))
		rec := httptest.NewRecorder()

		handler(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("anonymous_is_401", func(t *testing.T) {
		mw, _ := setupMiddleware(t)

		handler := mw.RequireAdmin(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not run")
		})

		req := httptest.NewRequest(http.MethodGet, "/api/admin/urls", nil)
		rec := httptest.NewRecorder()

		handler(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
