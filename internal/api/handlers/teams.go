package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/solenhq/teamgate/internal/api/dto"
	"github.com/solenhq/teamgate/internal/api/middleware"
	"github.com/solenhq/teamgate/internal/database/models"
	"gorm.io/gorm"
)

type TeamHandler struct {
	db *gorm.DB
}

func NewTeamHandler(db *gorm.DB) *TeamHandler {
	return &TeamHandler{db: db}
}

type CreateTeamRequest struct {
	Name string   `json:"name"`
	Tags []string `json:"tags,omitempty"`
}

// TeamResponse includes the populated member records on single-team reads.
type TeamResponse struct {
	models.Team
	Members []models.Member `json:"members,omitempty"`
}

// Create handles POST /api/v1/teams. The new team is stamped with the
// caller's tenant id and appended to the owner's team list in the same
// transaction.
func (h *TeamHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Team name is required"})
		return
	}

	tenantID := middleware.GetTenantID(r.Context())
	acct := middleware.GetAccount(r.Context())
	owner, ok := acct.Model().(*models.Owner)
	if !ok {
		writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Error: "Only owners can create teams"})
		return
	}

	team := models.Team{
		Name:     req.Name,
		Tags:     req.Tags,
		TenantID: tenantID,
		OwnerID:  owner.ID,
	}

	err := h.db.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&team).Error; err != nil {
			return err
		}
		owner.TeamIDs = append(owner.TeamIDs, team.ID)
		return tx.Save(owner).Error
	})
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusCreated, team)
}

// List handles GET /api/v1/teams
func (h *TeamHandler) List(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.GetTenantID(r.Context())

	var teams []models.Team
	if err := h.db.WithContext(r.Context()).
		Where("tenant_id = ?", tenantID).
		Find(&teams).Error; err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, teams)
}

// Get handles GET /api/v1/teams/{id}
func (h *TeamHandler) Get(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.GetTenantID(r.Context())

	team, err := h.findTeam(r, tenantID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Team not found"})
		return
	}

	var members []models.Member
	if err := h.db.WithContext(r.Context()).
		Where("team_id = ? AND tenant_id = ?", team.ID, tenantID).
		Find(&members).Error; err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, TeamResponse{Team: *team, Members: members})
}

// Update handles PATCH /api/v1/teams/{id}. Only name and tags may change.
func (h *TeamHandler) Update(w http.ResponseWriter, r *http.Request) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	allowed := map[string]bool{"name": true, "tags": true}
	for key := range raw {
		if !allowed[key] {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid updates!"})
			return
		}
	}

	tenantID := middleware.GetTenantID(r.Context())
	team, err := h.findTeam(r, tenantID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Team not found"})
		return
	}

	if v, ok := raw["name"]; ok {
		if err := json.Unmarshal(v, &team.Name); err != nil {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid name"})
			return
		}
	}
	if v, ok := raw["tags"]; ok {
		var tags []string
		if err := json.Unmarshal(v, &tags); err != nil {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid tags"})
			return
		}
		team.Tags = tags
	}

	if err := h.db.WithContext(r.Context()).Save(team).Error; err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, team)
}

// Delete handles DELETE /api/v1/teams/{id}. Member back-references and the
// owner's team list are cleaned up in the same transaction; there is no
// cascade in the schema.
func (h *TeamHandler) Delete(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.GetTenantID(r.Context())

	team, err := h.findTeam(r, tenantID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Team not found"})
		return
	}

	err = h.db.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(team).Error; err != nil {
			return err
		}

		// Detach members that pointed at the team
		if err := tx.Model(&models.Member{}).
			Where("team_id = ? AND tenant_id = ?", team.ID, tenantID).
			Update("team_id", nil).Error; err != nil {
			return err
		}

		// Drop the team from its owner's list
		var owner models.Owner
		err := tx.Where("id = ? AND tenant_id = ?", team.OwnerID, tenantID).First(&owner).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		owner.TeamIDs = owner.TeamIDs.Remove(team.ID)
		return tx.Save(&owner).Error
	})
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, team)
}

func (h *TeamHandler) findTeam(r *http.Request, tenantID uuid.UUID) (*models.Team, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return nil, err
	}

	var team models.Team
	if err := h.db.WithContext(r.Context()).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&team).Error; err != nil {
		return nil, err
	}
	return &team, nil
}
