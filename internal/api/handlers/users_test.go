package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/solenhq/teamgate/internal/api/handlers"
	"github.com/solenhq/teamgate/internal/auth"
	"github.com/solenhq/teamgate/internal/database/models"
	"github.com/solenhq/teamgate/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUser(t *testing.T) {
	t.Run("creates pending member with hashed password", func(t *testing.T) {
		ts := newTestServer(t)
		owner := testutil.CreateTestOwner(t, ts.db)
		token := testutil.OwnerToken(t, ts.jwt, owner)

		req := testutil.AuthenticatedRequest(t, http.MethodPost, "/api/v1/users/", handlers.CreateUserRequest{
			Name:     "New Member",
			Email:    "new@example.com",
			Password: "membersecret1",
			Roles:    []string{"user"},
		}, token)
		rr := httptest.NewRecorder()
		ts.router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusCreated, rr.Code)

		var stored models.Member
		require.NoError(t, ts.db.First(&stored, "email = ?", "new@example.com").Error)
		assert.Equal(t, owner.TenantID, stored.TenantID)
		assert.Equal(t, models.StatusPending, stored.Status)
		assert.False(t, stored.EmailVerified)
		assert.True(t, auth.CheckPassword("membersecret1", stored.PasswordHash))
		require.NotNil(t, stored.VerificationCode)
		assert.Equal(t, *stored.VerificationCode, ts.sender.LastVerificationCode("new@example.com"))
	})

	t.Run("attaches member to team on both sides", func(t *testing.T) {
		ts := newTestServer(t)
		owner := testutil.CreateTestOwner(t, ts.db)
		team := testutil.CreateTestTeam(t, ts.db, owner)
		token := testutil.OwnerToken(t, ts.jwt, owner)

		teamID := team.ID.String()
		req := testutil.AuthenticatedRequest(t, http.MethodPost, "/api/v1/users/", handlers.CreateUserRequest{
			Name:     "Teamed Member",
			Email:    "teamed@example.com",
			Password: "membersecret1",
			TeamID:   &teamID,
		}, token)
		rr := httptest.NewRecorder()
		ts.router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusCreated, rr.Code)

		var stored models.Member
		require.NoError(t, ts.db.First(&stored, "email = ?", "teamed@example.com").Error)
		require.NotNil(t, stored.TeamID)
		assert.Equal(t, team.ID, *stored.TeamID)

		var storedTeam models.Team
		require.NoError(t, ts.db.First(&storedTeam, "id = ?", team.ID).Error)
		assert.True(t, storedTeam.MemberIDs.Contains(stored.ID))
	})

	t.Run("unknown team leaves member unassigned", func(t *testing.T) {
		ts := newTestServer(t)
		owner := testutil.CreateTestOwner(t, ts.db)

		// A real team, but in a different tenant.
		other := testutil.CreateTestOwner(t, ts.db)
		foreignTeam := testutil.CreateTestTeam(t, ts.db, other)

		token := testutil.OwnerToken(t, ts.jwt, owner)
		teamID := foreignTeam.ID.String()
		req := testutil.AuthenticatedRequest(t, http.MethodPost, "/api/v1/users/", handlers.CreateUserRequest{
			Name:     "Orphan",
			Email:    "orphan@example.com",
			Password: "membersecret1",
			TeamID:   &teamID,
		}, token)
		rr := httptest.NewRecorder()
		ts.router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusCreated, rr.Code)

		var stored models.Member
		require.NoError(t, ts.db.First(&stored, "email = ?", "orphan@example.com").Error)
		assert.Nil(t, stored.TeamID)

		var storedTeam models.Team
		require.NoError(t, ts.db.First(&storedTeam, "id = ?", foreignTeam.ID).Error)
		assert.False(t, storedTeam.MemberIDs.Contains(stored.ID))
	})

	t.Run("rejects short password", func(t *testing.T) {
		ts := newTestServer(t)
		owner := testutil.CreateTestOwner(t, ts.db)
		token := testutil.OwnerToken(t, ts.jwt, owner)

		req := testutil.AuthenticatedRequest(t, http.MethodPost, "/api/v1/users/", handlers.CreateUserRequest{
			Name:     "Short",
			Email:    "short@example.com",
			Password: "short",
		}, token)
		rr := httptest.NewRecorder()
		ts.router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestListUsers(t *testing.T) {
	ts := newTestServer(t)
	owner := testutil.CreateTestOwner(t, ts.db)
	testutil.CreateTestMember(t, ts.db, owner)
	testutil.CreateTestMember(t, ts.db, owner)

	other := testutil.CreateTestOwner(t, ts.db)
	testutil.CreateTestMember(t, ts.db, other)

	token := testutil.OwnerToken(t, ts.jwt, owner)
	req := testutil.AuthenticatedRequest(t, http.MethodGet, "/api/v1/users/", nil, token)
	rr := httptest.NewRecorder()
	ts.router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var members []models.Member
	testutil.ParseJSONResponse(t, rr, &members)
	require.Len(t, members, 2)
	for _, m := range members {
		assert.Equal(t, owner.TenantID, m.TenantID)
	}
}

func TestGetUser(t *testing.T) {
	t.Run("returns member without password hash", func(t *testing.T) {
		ts := newTestServer(t)
		owner := testutil.CreateTestOwner(t, ts.db)
		member := testutil.CreateTestMember(t, ts.db, owner)
		token := testutil.OwnerToken(t, ts.jwt, owner)

		req := testutil.AuthenticatedRequest(t, http.MethodGet, "/api/v1/users/"+member.ID.String(), nil, token)
		rr := httptest.NewRecorder()
		ts.router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.NotContains(t, rr.Body.String(), member.PasswordHash)

		var resp models.Member
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Equal(t, member.ID, resp.ID)
	})

	t.Run("another tenant cannot read the member", func(t *testing.T) {
		ts := newTestServer(t)
		owner := testutil.CreateTestOwner(t, ts.db)
		member := testutil.CreateTestMember(t, ts.db, owner)

		intruder := testutil.CreateTestOwner(t, ts.db)
		token := testutil.OwnerToken(t, ts.jwt, intruder)

		req := testutil.AuthenticatedRequest(t, http.MethodGet, "/api/v1/users/"+member.ID.String(), nil, token)
		rr := httptest.NewRecorder()
		ts.router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestUpdateUser(t *testing.T) {
	t.Run("updates whitelisted fields", func(t *testing.T) {
		ts := newTestServer(t)
		owner := testutil.CreateTestOwner(t, ts.db)
		member := testutil.CreateTestMember(t, ts.db, owner)
		token := testutil.OwnerToken(t, ts.jwt, owner)

		req := testutil.AuthenticatedRequest(t, http.MethodPatch, "/api/v1/users/"+member.ID.String(), map[string]interface{}{
			"name":   "Renamed Member",
			"status": "suspended",
			"roles":  []string{"admin"},
		}, token)
		rr := httptest.NewRecorder()
		ts.router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var stored models.Member
		require.NoError(t, ts.db.First(&stored, "id = ?", member.ID).Error)
		assert.Equal(t, "Renamed Member", stored.Name)
		assert.Equal(t, models.StatusSuspended, stored.Status)
		assert.Equal(t, models.StringArray{"admin"}, stored.Roles)
	})

	t.Run("rejects unknown fields", func(t *testing.T) {
		ts := newTestServer(t)
		owner := testutil.CreateTestOwner(t, ts.db)
		member := testutil.CreateTestMember(t, ts.db, owner)
		token := testutil.OwnerToken(t, ts.jwt, owner)

		req := testutil.AuthenticatedRequest(t, http.MethodPatch, "/api/v1/users/"+member.ID.String(), map[string]interface{}{
			"tenantId": "breakout",
		}, token)
		rr := httptest.NewRecorder()
		ts.router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "Invalid updates!")
	})

	t.Run("rejects bogus status", func(t *testing.T) {
		ts := newTestServer(t)
		owner := testutil.CreateTestOwner(t, ts.db)
		member := testutil.CreateTestMember(t, ts.db, owner)
		token := testutil.OwnerToken(t, ts.jwt, owner)

		req := testutil.AuthenticatedRequest(t, http.MethodPatch, "/api/v1/users/"+member.ID.String(), map[string]interface{}{
			"status": "galactic",
		}, token)
		rr := httptest.NewRecorder()
		ts.router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("reassigning team maintains both sides", func(t *testing.T) {
		ts := newTestServer(t)
		owner := testutil.CreateTestOwner(t, ts.db)
		oldTeam := testutil.CreateTestTeam(t, ts.db, owner)
		newTeam := testutil.CreateTestTeam(t, ts.db, owner)
		member := testutil.CreateTestMember(t, ts.db, owner)

		require.NoError(t, ts.db.Model(member).Update("team_id", oldTeam.ID).Error)
		oldTeam.MemberIDs = append(oldTeam.MemberIDs, member.ID)
		require.NoError(t, ts.db.Save(oldTeam).Error)

		token := testutil.OwnerToken(t, ts.jwt, owner)
		req := testutil.AuthenticatedRequest(t, http.MethodPatch, "/api/v1/users/"+member.ID.String(), map[string]interface{}{
			"teamId": newTeam.ID.String(),
		}, token)
		rr := httptest.NewRecorder()
		ts.router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var storedMember models.Member
		require.NoError(t, ts.db.First(&storedMember, "id = ?", member.ID).Error)
		require.NotNil(t, storedMember.TeamID)
		assert.Equal(t, newTeam.ID, *storedMember.TeamID)

		var storedOld, storedNew models.Team
		require.NoError(t, ts.db.First(&storedOld, "id = ?", oldTeam.ID).Error)
		require.NoError(t, ts.db.First(&storedNew, "id = ?", newTeam.ID).Error)
		assert.False(t, storedOld.MemberIDs.Contains(member.ID))
		assert.True(t, storedNew.MemberIDs.Contains(member.ID))
	})

	t.Run("null teamId detaches the member", func(t *testing.T) {
		ts := newTestServer(t)
		owner := testutil.CreateTestOwner(t, ts.db)
		team := testutil.CreateTestTeam(t, ts.db, owner)
		member := testutil.CreateTestMember(t, ts.db, owner)

		require.NoError(t, ts.db.Model(member).Update("team_id", team.ID).Error)
		team.MemberIDs = append(team.MemberIDs, member.ID)
		require.NoError(t, ts.db.Save(team).Error)

		token := testutil.OwnerToken(t, ts.jwt, owner)
		req := testutil.AuthenticatedRequest(t, http.MethodPatch, "/api/v1/users/"+member.ID.String(), map[string]interface{}{
			"teamId": nil,
		}, token)
		rr := httptest.NewRecorder()
		ts.router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var storedMember models.Member
		require.NoError(t, ts.db.First(&storedMember, "id = ?", member.ID).Error)
		assert.Nil(t, storedMember.TeamID)

		var storedTeam models.Team
		require.NoError(t, ts.db.First(&storedTeam, "id = ?", team.ID).Error)
		assert.False(t, storedTeam.MemberIDs.Contains(member.ID))
	})
}

func TestDeleteUser(t *testing.T) {
	t.Run("removes member and detaches from team", func(t *testing.T) {
		ts := newTestServer(t)
		owner := testutil.CreateTestOwner(t, ts.db)
		team := testutil.CreateTestTeam(t, ts.db, owner)
		member := testutil.CreateTestMember(t, ts.db, owner)

		require.NoError(t, ts.db.Model(member).Update("team_id", team.ID).Error)
		team.MemberIDs = append(team.MemberIDs, member.ID)
		require.NoError(t, ts.db.Save(team).Error)

		token := testutil.OwnerToken(t, ts.jwt, owner)
		req := testutil.AuthenticatedRequest(t, http.MethodDelete, "/api/v1/users/"+member.ID.String(), nil, token)
		rr := httptest.NewRecorder()
		ts.router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var count int64
		require.NoError(t, ts.db.Model(&models.Member{}).Where("id = ?", member.ID).Count(&count).Error)
		assert.Equal(t, int64(0), count)

		var storedTeam models.Team
		require.NoError(t, ts.db.First(&storedTeam, "id = ?", team.ID).Error)
		assert.False(t, storedTeam.MemberIDs.Contains(member.ID))
	})

	t.Run("another tenant cannot delete the member", func(t *testing.T) {
		ts := newTestServer(t)
		owner := testutil.CreateTestOwner(t, ts.db)
		member := testutil.CreateTestMember(t, ts.db, owner)

		intruder := testutil.CreateTestOwner(t, ts.db)
		token := testutil.OwnerToken(t, ts.jwt, intruder)

		req := testutil.AuthenticatedRequest(t, http.MethodDelete, "/api/v1/users/"+member.ID.String(), nil, token)
		rr := httptest.NewRecorder()
		ts.router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)

		var count int64
		require.NoError(t, ts.db.Model(&models.Member{}).Where("id = ?", member.ID).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})
}
