package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/solenhq/teamgate/internal/api/handlers"
	"github.com/solenhq/teamgate/internal/database/models"
	"github.com/solenhq/teamgate/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTeam(t *testing.T) {
	t.Run("stamps tenant and records the team on the owner", func(t *testing.T) {
		ts := newTestServer(t)
		owner := testutil.CreateTestOwner(t, ts.db)
		token := testutil.OwnerToken(t, ts.jwt, owner)

		req := testutil.AuthenticatedRequest(t, http.MethodPost, "/api/v1/teams/", handlers.CreateTeamRequest{
			Name: "Platform",
			Tags: []string{"infra"},
		}, token)
		rr := httptest.NewRecorder()
		ts.router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusCreated, rr.Code)

		var created models.Team
		testutil.ParseJSONResponse(t, rr, &created)
		assert.Equal(t, "Platform", created.Name)
		assert.Equal(t, owner.TenantID, created.TenantID)
		assert.Equal(t, owner.ID, created.OwnerID)

		var stored models.Owner
		require.NoError(t, ts.db.First(&stored, "id = ?", owner.ID).Error)
		assert.True(t, stored.TeamIDs.Contains(created.ID))
	})

	t.Run("members cannot create teams", func(t *testing.T) {
		ts := newTestServer(t)
		owner := testutil.CreateTestOwner(t, ts.db)
		member := testutil.CreateTestMember(t, ts.db, owner)
		token := testutil.MemberToken(t, ts.jwt, member)

		req := testutil.AuthenticatedRequest(t, http.MethodPost, "/api/v1/teams/", handlers.CreateTeamRequest{
			Name: "Rogue",
		}, token)
		rr := httptest.NewRecorder()
		ts.router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("requires a name", func(t *testing.T) {
		ts := newTestServer(t)
		owner := testutil.CreateTestOwner(t, ts.db)
		token := testutil.OwnerToken(t, ts.jwt, owner)

		req := testutil.AuthenticatedRequest(t, http.MethodPost, "/api/v1/teams/", handlers.CreateTeamRequest{}, token)
		rr := httptest.NewRecorder()
		ts.router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("requires authentication", func(t *testing.T) {
		ts := newTestServer(t)

		req := testutil.UnauthenticatedRequest(t, http.MethodPost, "/api/v1/teams/", handlers.CreateTeamRequest{Name: "X"})
		rr := httptest.NewRecorder()
		ts.router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestListTeams(t *testing.T) {
	ts := newTestServer(t)
	owner := testutil.CreateTestOwner(t, ts.db)
	testutil.CreateTestTeam(t, ts.db, owner)
	testutil.CreateTestTeam(t, ts.db, owner)

	other := testutil.CreateTestOwner(t, ts.db)
	testutil.CreateTestTeam(t, ts.db, other)

	token := testutil.OwnerToken(t, ts.jwt, owner)
	req := testutil.AuthenticatedRequest(t, http.MethodGet, "/api/v1/teams/", nil, token)
	rr := httptest.NewRecorder()
	ts.router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var teams []models.Team
	testutil.ParseJSONResponse(t, rr, &teams)
	require.Len(t, teams, 2)
	for _, team := range teams {
		assert.Equal(t, owner.TenantID, team.TenantID)
	}
}

func TestGetTeam(t *testing.T) {
	t.Run("populates members", func(t *testing.T) {
		ts := newTestServer(t)
		owner := testutil.CreateTestOwner(t, ts.db)
		team := testutil.CreateTestTeam(t, ts.db, owner)
		member := testutil.CreateTestMember(t, ts.db, owner)
		require.NoError(t, ts.db.Model(member).Update("team_id", team.ID).Error)

		token := testutil.OwnerToken(t, ts.jwt, owner)
		req := testutil.AuthenticatedRequest(t, http.MethodGet, "/api/v1/teams/"+team.ID.String(), nil, token)
		rr := httptest.NewRecorder()
		ts.router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var resp handlers.TeamResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Equal(t, team.ID, resp.ID)
		require.Len(t, resp.Members, 1)
		assert.Equal(t, member.ID, resp.Members[0].ID)
	})

	t.Run("another tenant cannot read the team", func(t *testing.T) {
		ts := newTestServer(t)
		owner := testutil.CreateTestOwner(t, ts.db)
		team := testutil.CreateTestTeam(t, ts.db, owner)

		intruder := testutil.CreateTestOwner(t, ts.db)
		token := testutil.OwnerToken(t, ts.jwt, intruder)

		req := testutil.AuthenticatedRequest(t, http.MethodGet, "/api/v1/teams/"+team.ID.String(), nil, token)
		rr := httptest.NewRecorder()
		ts.router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "Team not found")
	})
}

func TestUpdateTeam(t *testing.T) {
	t.Run("updates name and tags", func(t *testing.T) {
		ts := newTestServer(t)
		owner := testutil.CreateTestOwner(t, ts.db)
		team := testutil.CreateTestTeam(t, ts.db, owner)
		token := testutil.OwnerToken(t, ts.jwt, owner)

		req := testutil.AuthenticatedRequest(t, http.MethodPatch, "/api/v1/teams/"+team.ID.String(), map[string]interface{}{
			"name": "Renamed",
			"tags": []string{"a", "b"},
		}, token)
		rr := httptest.NewRecorder()
		ts.router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var stored models.Team
		require.NoError(t, ts.db.First(&stored, "id = ?", team.ID).Error)
		assert.Equal(t, "Renamed", stored.Name)
		assert.Equal(t, models.StringArray{"a", "b"}, stored.Tags)
	})

	t.Run("rejects unknown fields", func(t *testing.T) {
		ts := newTestServer(t)
		owner := testutil.CreateTestOwner(t, ts.db)
		team := testutil.CreateTestTeam(t, ts.db, owner)
		token := testutil.OwnerToken(t, ts.jwt, owner)

		req := testutil.AuthenticatedRequest(t, http.MethodPatch, "/api/v1/teams/"+team.ID.String(), map[string]interface{}{
			"status": "suspended",
		}, token)
		rr := httptest.NewRecorder()
		ts.router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "Invalid updates!")
	})

	t.Run("another tenant cannot update the team", func(t *testing.T) {
		ts := newTestServer(t)
		owner := testutil.CreateTestOwner(t, ts.db)
		team := testutil.CreateTestTeam(t, ts.db, owner)

		intruder := testutil.CreateTestOwner(t, ts.db)
		token := testutil.OwnerToken(t, ts.jwt, intruder)

		req := testutil.AuthenticatedRequest(t, http.MethodPatch, "/api/v1/teams/"+team.ID.String(), map[string]interface{}{
			"name": "Hijacked",
		}, token)
		rr := httptest.NewRecorder()
		ts.router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)

		var stored models.Team
		require.NoError(t, ts.db.First(&stored, "id = ?", team.ID).Error)
		assert.Equal(t, team.Name, stored.Name)
	})
}

func TestDeleteTeam(t *testing.T) {
	t.Run("detaches members and owner back-references", func(t *testing.T) {
		ts := newTestServer(t)
		owner := testutil.CreateTestOwner(t, ts.db)
		team := testutil.CreateTestTeam(t, ts.db, owner)
		member := testutil.CreateTestMember(t, ts.db, owner)
		require.NoError(t, ts.db.Model(member).Update("team_id", team.ID).Error)

		token := testutil.OwnerToken(t, ts.jwt, owner)
		req := testutil.AuthenticatedRequest(t, http.MethodDelete, "/api/v1/teams/"+team.ID.String(), nil, token)
		rr := httptest.NewRecorder()
		ts.router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var count int64
		require.NoError(t, ts.db.Model(&models.Team{}).Where("id = ?", team.ID).Count(&count).Error)
		assert.Equal(t, int64(0), count)

		var storedMember models.Member
		require.NoError(t, ts.db.First(&storedMember, "id = ?", member.ID).Error)
		assert.Nil(t, storedMember.TeamID)

		var storedOwner models.Owner
		require.NoError(t, ts.db.First(&storedOwner, "id = ?", owner.ID).Error)
		assert.False(t, storedOwner.TeamIDs.Contains(team.ID))
	})

	t.Run("another tenant cannot delete the team", func(t *testing.T) {
		ts := newTestServer(t)
		owner := testutil.CreateTestOwner(t, ts.db)
		team := testutil.CreateTestTeam(t, ts.db, owner)

		intruder := testutil.CreateTestOwner(t, ts.db)
		token := testutil.OwnerToken(t, ts.jwt, intruder)

		req := testutil.AuthenticatedRequest(t, http.MethodDelete, "/api/v1/teams/"+team.ID.String(), nil, token)
		rr := httptest.NewRecorder()
		ts.router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)

		var count int64
		require.NoError(t, ts.db.Model(&models.Team{}).Where("id = ?", team.ID).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})
}
