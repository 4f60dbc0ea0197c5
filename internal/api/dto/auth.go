package dto

// Stable machine-readable codes on auth endpoint responses.
const (
	CodeRegistrationFailed      = "REGISTRATION_FAILED"
	CodeEmailVerified           = "EMAIL_VERIFIED"
	CodeEmailVerificationFailed = "EMAIL_VERIFICATION_FAILED"
	CodeOTPSent                 = "OTP_SENT"
	CodeLoginFailed             = "LOGIN_FAILED"
	CodeAuthSuccess             = "AUTH_SUCCESS"
	CodeOTPVerificationFailed   = "OTP_VERIFICATION_FAILED"
)

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	OrgName  string `json:"orgName"`
}

func (r RegisterRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Name == "" {
		errors["name"] = "Name is required"
	}
	if r.Email == "" {
		errors["email"] = "Email is required"
	}
	if r.Password == "" {
		errors["password"] = "Password is required"
	} else if len(r.Password) < 8 {
		errors["password"] = "Password must be at least 8 characters"
	}
	if r.OrgName == "" {
		errors["orgName"] = "Organization name is required"
	}

	return errors
}

type VerifyEmailRequest struct {
	Email            string `json:"email"`
	VerificationCode string `json:"verificationCode"`
}

func (r VerifyEmailRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if r.Email == "" {
		errors["email"] = "Email is required"
	}
	if r.VerificationCode == "" {
		errors["verificationCode"] = "Verification code is required"
	}
	return errors
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if r.Email == "" {
		errors["email"] = "Email is required"
	}
	if r.Password == "" {
		errors["password"] = "Password is required"
	}
	return errors
}

type RequestOTPRequest struct {
	Email string `json:"email"`
}

type VerifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

func (r VerifyOTPRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if r.Email == "" {
		errors["email"] = "Email is required"
	}
	if r.OTP == "" {
		errors["otp"] = "OTP is required"
	}
	return errors
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type ChangePasswordRequest struct {
	Email           string `json:"email"`
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (r ChangePasswordRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if r.Email == "" {
		errors["email"] = "Email is required"
	}
	if r.CurrentPassword == "" {
		errors["currentPassword"] = "Current password is required"
	}
	if r.NewPassword == "" {
		errors["newPassword"] = "New password is required"
	} else if len(r.NewPassword) < 8 {
		errors["newPassword"] = "Password must be at least 8 characters"
	}
	return errors
}

// AuthSuccessResponse is returned once the OTP step completes.
type AuthSuccessResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	Name         string `json:"name"`
	Role         string `json:"role"`
	Message      string `json:"message"`
	Code         string `json:"code"`
}

type RefreshTokenResponse struct {
	Token string `json:"token"`
}
