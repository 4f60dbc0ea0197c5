package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/solenhq/teamgate/internal/api/dto"
	"github.com/solenhq/teamgate/internal/auth"
)

type AuthHandler struct {
	authService *auth.Service
}

func NewAuthHandler(authService *auth.Service) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body", Code: dto.CodeRegistrationFailed})
		return
	}

	if details := req.Validate(); len(details) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "All fields are required", Code: dto.CodeRegistrationFailed, Details: details})
		return
	}

	_, err := h.authService.Register(r.Context(), auth.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		OrgName:  req.OrgName,
	})
	if err != nil {
		msg := "Registration failed"
		if errors.Is(err, auth.ErrEmailTaken) {
			msg = err.Error()
		}
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: msg, Code: dto.CodeRegistrationFailed})
		return
	}

	writeJSON(w, http.StatusCreated, dto.MessageResponse{
		Message: "Registration successful. Please check your email for verification.",
	})
}

func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req dto.VerifyEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body", Code: dto.CodeEmailVerificationFailed})
		return
	}

	if details := req.Validate(); len(details) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Email and verification code are required", Code: dto.CodeEmailVerificationFailed, Details: details})
		return
	}

	if err := h.authService.VerifyEmail(r.Context(), req.Email, req.VerificationCode); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: err.Error(), Code: dto.CodeEmailVerificationFailed})
		return
	}

	writeJSON(w, http.StatusOK, dto.MessageResponse{
		Message: "Email verified successfully",
		Code:    dto.CodeEmailVerified,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body", Code: dto.CodeLoginFailed})
		return
	}

	if details := req.Validate(); len(details) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Email and password are required", Code: dto.CodeLoginFailed, Details: details})
		return
	}

	if err := h.authService.Login(r.Context(), req.Email, req.Password); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: loginErrorMessage(err), Code: dto.CodeLoginFailed})
		return
	}

	writeJSON(w, http.StatusOK, dto.MessageResponse{
		Message: "OTP sent to your email",
		Code:    dto.CodeOTPSent,
	})
}

// loginErrorMessage keeps the credential/not-found cases indistinguishable
// on the wire while letting lockout and suspension name themselves.
func loginErrorMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrAccountLocked),
		errors.Is(err, auth.ErrAccountSuspended),
		errors.Is(err, auth.ErrInvalidCredentials):
		return err.Error()
	default:
		return "Login failed"
	}
}

func (h *AuthHandler) RequestOTP(w http.ResponseWriter, r *http.Request) {
	var req dto.RequestOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Email is required"})
		return
	}

	if err := h.authService.RequestOTP(r.Context(), req.Email); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "OTP sent to your email"})
}

func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req dto.VerifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body", Code: dto.CodeOTPVerificationFailed})
		return
	}

	if details := req.Validate(); len(details) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Email and OTP are required", Code: dto.CodeOTPVerificationFailed, Details: details})
		return
	}

	result, err := h.authService.VerifyOTP(r.Context(), req.Email, req.OTP)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: err.Error(), Code: dto.CodeOTPVerificationFailed})
		return
	}

	writeJSON(w, http.StatusOK, dto.AuthSuccessResponse{
		Token:        result.Token,
		RefreshToken: result.RefreshToken,
		Name:         result.Name,
		Role:         result.Role,
		Message:      "Authentication successful",
		Code:         dto.CodeAuthSuccess,
	})
}

func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{Error: "invalid refresh token"})
		return
	}

	token, err := h.authService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{Error: "invalid refresh token"})
		return
	}

	writeJSON(w, http.StatusOK, dto.RefreshTokenResponse{Token: token})
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if details := req.Validate(); len(details) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: details})
		return
	}

	if err := h.authService.ChangePassword(r.Context(), req.Email, req.CurrentPassword, req.NewPassword); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "Password changed successfully"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
