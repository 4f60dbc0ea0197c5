package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/solenhq/teamgate/internal/api/dto"
	"github.com/solenhq/teamgate/internal/api/middleware"
	"github.com/solenhq/teamgate/internal/auth"
	"github.com/solenhq/teamgate/internal/database/models"
	"gorm.io/gorm"
)

// MeHandler exposes the authenticated account's own record.
type MeHandler struct {
	db *gorm.DB
}

func NewMeHandler(db *gorm.DB) *MeHandler {
	return &MeHandler{db: db}
}

// Get handles GET /api/v1/me
func (h *MeHandler) Get(w http.ResponseWriter, r *http.Request) {
	acct := middleware.GetAccount(r.Context())
	if acct == nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "User not found"})
		return
	}
	writeJSON(w, http.StatusOK, acct.Model())
}

// Update handles PATCH /api/v1/me. Both account kinds may change name,
// email, password and tags; nothing else.
func (h *MeHandler) Update(w http.ResponseWriter, r *http.Request) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	allowed := map[string]bool{"name": true, "email": true, "password": true, "tags": true}
	for key := range raw {
		if !allowed[key] {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid updates!"})
			return
		}
	}

	acct := middleware.GetAccount(r.Context())
	if acct == nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "User not found"})
		return
	}

	var err error
	switch record := acct.Model().(type) {
	case *models.Owner:
		err = applyOwnerUpdates(record, raw)
	case *models.Member:
		err = applyMemberUpdates(record, raw)
	default:
		err = errors.New("unknown account kind")
	}
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	if err := h.db.WithContext(r.Context()).Save(acct.Model()).Error; err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, acct.Model())
}

func applyOwnerUpdates(owner *models.Owner, raw map[string]json.RawMessage) error {
	if v, ok := raw["name"]; ok {
		if err := json.Unmarshal(v, &owner.Name); err != nil {
			return errors.New("invalid name")
		}
	}
	if v, ok := raw["email"]; ok {
		if err := json.Unmarshal(v, &owner.Email); err != nil {
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
		owner.PasswordHash = hash
	}
	if v, ok := raw["tags"]; ok {
		var tags models.StringArray
		if err := json.Unmarshal(v, &tags); err != nil {
			return errors.New("invalid tags")
		}
		owner.Tags = tags
	}
	return nil
}
