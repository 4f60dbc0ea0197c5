package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/solenhq/teamgate/internal/api/dto"
	"github.com/solenhq/teamgate/internal/api/middleware"
	"github.com/solenhq/teamgate/internal/auth"
	"github.com/solenhq/teamgate/internal/database/models"
	"gorm.io/gorm"
)

// UserHandler manages tenant member accounts.
type UserHandler struct {
	db     *gorm.DB
	sender auth.Sender
}

func NewUserHandler(db *gorm.DB, sender auth.Sender) *UserHandler {
	return &UserHandler{db: db, sender: sender}
}

type CreateUserRequest struct {
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Password string   `json:"password"`
	TeamID   *string  `json:"teamId,omitempty"`
	Roles    []string `json:"roles,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

func (r CreateUserRequest) Validate() map[string]string {
	errs := make(map[string]string)
	if r.Name == "" {
		errs["name"] = "Name is required"
	}
	if r.Email == "" {
		errs["email"] = "Email is required"
	}
	if r.Password == "" {
		errs["password"] = "Password is required"
	} else if len(r.Password) < 8 {
		errs["password"] = "Password must be at least 8 characters"
	}
	if r.TeamID != nil && *r.TeamID != "" {
		if _, err := uuid.Parse(*r.TeamID); err != nil {
			errs["teamId"] = "Invalid team ID format"
		}
	}
	return errs
}

// Create handles POST /api/v1/users. The member starts pending and
// unverified; a verification code is stored and mailed.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if details := req.Validate(); len(details) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: details})
		return
	}

	tenantID := middleware.GetTenantID(r.Context())

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	code, err := auth.GenerateCode()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	member := models.Member{
		Name:             req.Name,
		Email:            req.Email,
		PasswordHash:     hash,
		TenantID:         tenantID,
		Roles:            req.Roles,
		Tags:             req.Tags,
		Status:           models.StatusPending,
		VerificationCode: &code,
	}

	err = h.db.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&member).Error; err != nil {
			return err
		}
		if req.TeamID == nil || *req.TeamID == "" {
			return nil
		}

		teamID, _ := uuid.Parse(*req.TeamID)
		var team models.Team
		err := tx.Where("id = ? AND tenant_id = ?", teamID, tenantID).First(&team).Error
		if err != nil {
			// Unknown team in this tenant: the member is still created,
			// just unassigned.
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		team.MemberIDs = append(team.MemberIDs, member.ID)
		if err := tx.Save(&team).Error; err != nil {
			return err
		}
		member.TeamID = &team.ID
		return tx.Save(&member).Error
	})
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	if err := h.sender.SendVerificationCode(r.Context(), member.Email, code); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusCreated, member)
}

// List handles GET /api/v1/users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.GetTenantID(r.Context())

	var members []models.Member
	if err := h.db.WithContext(r.Context()).
		Where("tenant_id = ?", tenantID).
		Find(&members).Error; err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, members)
}

// Get handles GET /api/v1/users/{id}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.GetTenantID(r.Context())

	member, err := h.findMember(r, tenantID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "User not found"})
		return
	}

	writeJSON(w, http.StatusOK, member)
}

// Update handles PATCH /api/v1/users/{id}. Reassigning teamId detaches the
// member from the old team's list and appends it to the new one.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	allowed := map[string]bool{
		"name": true, "email": true, "password": true, "tags": true,
		"roles": true, "status": true, "teamId": true,
	}
	for key := range raw {
		if !allowed[key] {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid updates!"})
			return
		}
	}

	tenantID := middleware.GetTenantID(r.Context())
	member, err := h.findMember(r, tenantID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "User not found"})
		return
	}

	err = h.db.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		if v, ok := raw["teamId"]; ok {
			if err := h.reassignTeam(tx, member, tenantID, v); err != nil {
				return err
			}
		}
		if err := applyMemberUpdates(member, raw); err != nil {
			return err
		}
		return tx.Save(member).Error
	})
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, member)
}

// Delete handles DELETE /api/v1/users/{id}, detaching the member from its
// team's list.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.GetTenantID(r.Context())

	member, err := h.findMember(r, tenantID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "User not found"})
		return
	}

	err = h.db.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(member).Error; err != nil {
			return err
		}
		if member.TeamID == nil {
			return nil
		}

		var team models.Team
		err := tx.First(&team, "id = ?", *member.TeamID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		team.MemberIDs = team.MemberIDs.Remove(member.ID)
		return tx.Save(&team).Error
	})
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, member)
}

func (h *UserHandler) reassignTeam(tx *gorm.DB, member *models.Member, tenantID uuid.UUID, rawTeamID json.RawMessage) error {
	// Detach from the old team first
	if member.TeamID != nil {
		var oldTeam models.Team
		err := tx.First(&oldTeam, "id = ?", *member.TeamID).Error
		if err == nil {
			oldTeam.MemberIDs = oldTeam.MemberIDs.Remove(member.ID)
			if err := tx.Save(&oldTeam).Error; err != nil {
				return err
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		member.TeamID = nil
	}

	var teamIDStr *string
	if err := json.Unmarshal(rawTeamID, &teamIDStr); err != nil {
		return errors.New("invalid teamId")
	}
	if teamIDStr == nil || *teamIDStr == "" {
		return nil
	}

	teamID, err := uuid.Parse(*teamIDStr)
	if err != nil {
		return errors.New("invalid teamId")
	}

	var newTeam models.Team
	err = tx.Where("id = ? AND tenant_id = ?", teamID, tenantID).First(&newTeam).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	newTeam.MemberIDs = append(newTeam.MemberIDs, member.ID)
	if err := tx.Save(&newTeam).Error; err != nil {
		return err
	}
	member.TeamID = &newTeam.ID
	return nil
}

func applyMemberUpdates(member *models.Member, raw map[string]json.RawMessage) error {
	if v, ok := raw["name"]; ok {
		if err := json.Unmarshal(v, &member.Name); err != nil {
			return errors.New("invalid name")
		}
	}
	if v, ok := raw["email"]; ok {
		if err := json.Unmarshal(v, &member.Email); err != nil {
			return errors.New("invalid email")
		}
	}
	if v, ok := raw["password"]; ok {
		var plaintext string
		if err := json.Unmarshal(v, &plaintext); err != nil || len(plaintext) < 8 {
			return errors.New("invalid password")
		}
		hash, err := auth.HashPassword(plaintext)
		if err != nil {
			return err
		}
		member.PasswordHash = hash
	}
	if v, ok := raw["tags"]; ok {
		var tags models.StringArray
		if err := json.Unmarshal(v, &tags); err != nil {
			return errors.New("invalid tags")
		}
		member.Tags = tags
	}
	if v, ok := raw["roles"]; ok {
		var roles models.StringArray
		if err := json.Unmarshal(v, &roles); err != nil {
			return errors.New("invalid roles")
		}
		member.Roles = roles
	}
	if v, ok := raw["status"]; ok {
		var status models.AccountStatus
		if err := json.Unmarshal(v, &status); err != nil {
			return errors.New("invalid status")
		}
		switch status {
		case models.StatusActive, models.StatusSuspended, models.StatusPending:
			member.Status = status
		default:
			return errors.New("invalid status")
		}
	}
	return nil
}

func (h *UserHandler) findMember(r *http.Request, tenantID uuid.UUID) (*models.Member, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return nil, err
	}

	var member models.Member
	if err := h.db.WithContext(r.Context()).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}
