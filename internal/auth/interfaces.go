package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/solenhq/teamgate/internal/database/models"
)

// Sender delivers one-time codes to an account's email address. The
// production implementation enqueues a background task; tests stub it.
type Sender interface {
	SendVerificationCode(ctx context.Context, email, code string) error
	SendLoginOTP(ctx context.Context, email, otp string) error
}

// Authenticator defines the account lifecycle and login operations.
type Authenticator interface {
	Register(ctx context.Context, input RegisterInput) (*models.Owner, error)
	VerifyEmail(ctx context.Context, email, code string) error
	Login(ctx context.Context, email, password string) error
	RequestOTP(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, otp string) (*AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	ChangePassword(ctx context.Context, email, currentPassword, newPassword string) error
}

// TokenService defines the JWT operations used by the middleware.
type TokenService interface {
	GenerateAccessToken(accountID, tenantID uuid.UUID, email, role string) (string, error)
	GeneratePair(accountID, tenantID uuid.UUID, email, role string) (access, refresh string, err error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	ValidateRefreshToken(tokenString string) (*RefreshClaims, error)
}

// Compile-time interface satisfaction checks
var (
	_ Authenticator = (*Service)(nil)
	_ TokenService  = (*JWTService)(nil)
)
