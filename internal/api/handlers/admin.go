package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/solenhq/teamgate/internal/api/dto"
	"github.com/solenhq/teamgate/internal/database/models"
	"gorm.io/gorm"
)

// AdminHandler is the platform operator surface: listing and suspending
// records across tenants. Routes behind it require the super_admin role.
type AdminHandler struct {
	db *gorm.DB
}

func NewAdminHandler(db *gorm.DB) *AdminHandler {
	return &AdminHandler{db: db}
}

type UpdateStatusRequest struct {
	Status models.AccountStatus `json:"status"`
}

func (r UpdateStatusRequest) Validate() error {
	switch r.Status {
	case models.StatusActive, models.StatusSuspended:
		return nil
	default:
		return errors.New("status must be active or suspended")
	}
}

// ListAdmins handles GET /api/v1/admin/super-admins
func (h *AdminHandler) ListAdmins(w http.ResponseWriter, r *http.Request) {
	var admins []models.Admin
	if err := h.db.WithContext(r.Context()).Find(&admins).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, admins)
}

// UpdateAdminStatus handles PATCH /api/v1/admin/super-admins/{id}/status
func (h *AdminHandler) UpdateAdminStatus(w http.ResponseWriter, r *http.Request) {
	h.updateStatus(w, r, &models.Admin{}, "Super admin not found")
}

// ListUsers handles GET /api/v1/admin/users
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	var members []models.Member
	if err := h.db.WithContext(r.Context()).Find(&members).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, members)
}

// UpdateUserStatus handles PATCH /api/v1/admin/users/{id}/status
func (h *AdminHandler) UpdateUserStatus(w http.ResponseWriter, r *http.Request) {
	h.updateStatus(w, r, &models.Member{}, "User not found")
}

// ListTeams handles GET /api/v1/admin/teams
func (h *AdminHandler) ListTeams(w http.ResponseWriter, r *http.Request) {
	var teams []models.Team
	if err := h.db.WithContext(r.Context()).Find(&teams).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, teams)
}

// UpdateTeamStatus handles PATCH /api/v1/admin/teams/{id}/status
func (h *AdminHandler) UpdateTeamStatus(w http.ResponseWriter, r *http.Request) {
	h.updateStatus(w, r, &models.Team{}, "Team not found")
}

func (h *AdminHandler) updateStatus(w http.ResponseWriter, r *http.Request, record interface{}, notFoundMsg string) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: notFoundMsg})
		return
	}

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	db := h.db.WithContext(r.Context())
	if err := db.First(record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: notFoundMsg})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}

	if err := db.Model(record).Update("status", req.Status).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, record)
}
