package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/solenhq/teamgate/internal/api/middleware"
	"github.com/solenhq/teamgate/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuth(t *testing.T) {
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	jwtService := testutil.CreateTestJWTService()
	owner := testutil.CreateTestOwner(t, db)
	member := testutil.CreateTestMember(t, db, owner)

	var gotAccountID, gotTenantID uuid.UUID
	var gotRole string
	handler := middleware.Auth(jwtService, db)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccountID = middleware.GetAccountID(r.Context())
		gotTenantID = middleware.GetTenantID(r.Context())
		gotRole = middleware.GetRole(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("accepts valid owner token", func(t *testing.T) {
		token := testutil.OwnerToken(t, jwtService, owner)
		req := testutil.AuthenticatedRequest(t, http.MethodGet, "/me", nil, token)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, owner.ID, gotAccountID)
		assert.Equal(t, owner.TenantID, gotTenantID)
		assert.Equal(t, "super_admin", gotRole)
	})

	t.Run("accepts valid member token", func(t *testing.T) {
		token := testutil.MemberToken(t, jwtService, member)
		req := testutil.AuthenticatedRequest(t, http.MethodGet, "/me", nil, token)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, member.ID, gotAccountID)
		assert.Equal(t, "user", gotRole)
	})

	t.Run("rejects missing header", func(t *testing.T) {
		req := testutil.UnauthenticatedRequest(t, http.MethodGet, "/me", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Contains(t, rr.Body.String(), "please authenticate")
	})

	t.Run("rejects non-bearer scheme", func(t *testing.T) {
		req := testutil.UnauthenticatedRequest(t, http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Basic abc123")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("rejects garbage token", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, http.MethodGet, "/me", nil, "not-a-token")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("rejects token for account that no longer exists", func(t *testing.T) {
		token, err := jwtService.GenerateAccessToken(uuid.New(), owner.TenantID, "ghost@example.com", "super_admin")
		require.NoError(t, err)

		req := testutil.AuthenticatedRequest(t, http.MethodGet, "/me", nil, token)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("rejects token with mismatched tenant", func(t *testing.T) {
		token, err := jwtService.GenerateAccessToken(owner.ID, uuid.New(), owner.Email, "super_admin")
		require.NoError(t, err)

		req := testutil.AuthenticatedRequest(t, http.MethodGet, "/me", nil, token)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestRequireRole(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	withRole := func(req *http.Request, role string) *http.Request {
		ctx := context.WithValue(req.Context(), middleware.RoleKey, role)
		return req.WithContext(ctx)
	}

	t.Run("allows listed role", func(t *testing.T) {
		handler := middleware.RequireRole("super_admin")(next)
		req := withRole(httptest.NewRequest(http.MethodGet, "/admin", nil), "super_admin")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("forbids other roles", func(t *testing.T) {
		handler := middleware.RequireRole("super_admin")(next)
		req := withRole(httptest.NewRequest(http.MethodGet, "/admin", nil), "user")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("forbids missing role", func(t *testing.T) {
		handler := middleware.RequireRole("super_admin")(next)
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})
}
