package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/solenhq/teamgate/internal/database/models"
	"github.com/solenhq/teamgate/pkg/config"
	"gorm.io/gorm"
)

var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrAccountLocked      = errors.New("account temporarily locked, try again later")
	ErrAccountSuspended   = errors.New("account is suspended")
	ErrInvalidCode        = errors.New("invalid verification code")
	ErrInvalidOTP         = errors.New("invalid OTP")
	ErrExpiredOTP         = errors.New("OTP has expired")
)

type Service struct {
	db     *gorm.DB
	jwt    *JWTService
	sender Sender
	login  config.LoginConfig
}

func NewService(db *gorm.DB, jwt *JWTService, sender Sender, login config.LoginConfig) *Service {
	return &Service{db: db, jwt: jwt, sender: sender, login: login}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	OrgName  string
}

// AuthResult is returned once the OTP step completes.
type AuthResult struct {
	Token        string
	RefreshToken string
	Name         string
	Role         string
}

// Register creates a new owner account in its own fresh tenant and sends
// the email verification code. The account starts unverified.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*models.Owner, error) {
	var existing models.Owner
	if err := s.db.WithContext(ctx).Where("email = ?", input.Email).First(&existing).Error; err == nil {
		return nil, ErrEmailTaken
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	code, err := GenerateCode()
	if err != nil {
		return nil, err
	}

	owner := models.Owner{
		Name:             input.Name,
		OrgName:          input.OrgName,
		Email:            input.Email,
		PasswordHash:     hash,
		TenantID:         uuid.New(),
		Status:           models.StatusActive,
		VerificationCode: &code,
	}

	if err := s.db.WithContext(ctx).Create(&owner).Error; err != nil {
		return nil, err
	}

	// Delivery failure surfaces to the caller; the account stays created
	// and the code can be re-requested by registering support flows later.
	if err := s.sender.SendVerificationCode(ctx, owner.Email, code); err != nil {
		return nil, err
	}

	return &owner, nil
}

// VerifyEmail consumes a verification code. Codes are single use: success
// clears the stored code, so a replay fails with ErrInvalidCode.
func (s *Service) VerifyEmail(ctx context.Context, email, code string) error {
	acct, err := findAccountByEmail(ctx, s.db, email)
	if err != nil {
		return err
	}

	stored := acct.VerificationCode()
	if stored == nil || *stored != code {
		return ErrInvalidCode
	}

	acct.MarkEmailVerified()
	acct.SetVerificationCode(nil)
	return s.db.WithContext(ctx).Save(acct.Model()).Error
}

// Login performs the password step. It never issues tokens: success means
// an OTP was generated and mailed, and the caller must complete VerifyOTP.
//
// The attempts counter is read-modify-write without locking; two
// simultaneous failed logins can lose an increment. Accepted for this
// threat model.
func (s *Service) Login(ctx context.Context, email, password string) error {
	acct, err := findAccountByEmail(ctx, s.db, email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return ErrInvalidCredentials
		}
		return err
	}

	if locked(acct, s.login.MaxAttempts, s.login.LockoutWindow()) {
		return ErrAccountLocked
	}

	if acct.Status() == models.StatusSuspended {
		return ErrAccountSuspended
	}

	if !CheckPassword(password, acct.PasswordHash()) {
		acct.SetLoginAttempts(acct.LoginAttempts() + 1)
		acct.SetLastLoginAttempt(time.Now())
		if err := s.db.WithContext(ctx).Save(acct.Model()).Error; err != nil {
			return err
		}
		return ErrInvalidCredentials
	}

	acct.SetLoginAttempts(0)
	if err := s.issueOTP(ctx, acct); err != nil {
		return err
	}
	return nil
}

// RequestOTP reissues a login OTP for either account kind.
func (s *Service) RequestOTP(ctx context.Context, email string) error {
	acct, err := findAccountByEmail(ctx, s.db, email)
	if err != nil {
		return err
	}
	return s.issueOTP(ctx, acct)
}

func (s *Service) issueOTP(ctx context.Context, acct Account) error {
	otp, err := GenerateCode()
	if err != nil {
		return err
	}

	expires := time.Now().Add(s.login.OTPTTL())
	acct.SetLoginOTP(&otp, &expires)
	if err := s.db.WithContext(ctx).Save(acct.Model()).Error; err != nil {
		return err
	}

	return s.sender.SendLoginOTP(ctx, acct.Email(), otp)
}

// VerifyOTP consumes the login second factor and issues the token pair.
// Where the account kind tracks an expiry, a stale code is rejected.
func (s *Service) VerifyOTP(ctx context.Context, email, otp string) (*AuthResult, error) {
	acct, err := findAccountByEmail(ctx, s.db, email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, ErrInvalidOTP
		}
		return nil, err
	}

	stored := acct.LoginOTP()
	if stored == nil || *stored != otp {
		return nil, ErrInvalidOTP
	}
	if exp := acct.LoginOTPExpires(); exp != nil && time.Now().After(*exp) {
		return nil, ErrExpiredOTP
	}

	acct.SetLoginOTP(nil, nil)
	acct.SetLastLogin(time.Now())
	if err := s.db.WithContext(ctx).Save(acct.Model()).Error; err != nil {
		return nil, err
	}

	access, refresh, err := s.jwt.GeneratePair(acct.ID(), acct.TenantID(), acct.Email(), acct.Role())
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		Token:        access,
		RefreshToken: refresh,
		Name:         acct.Name(),
		Role:         acct.Role(),
	}, nil
}

// Refresh validates a refresh token and mints a new access token. The
// refresh token itself is not rotated: refresh state is never persisted.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return "", ErrInvalidToken
	}

	acct, err := findAccountByID(ctx, s.db, claims.AccountID)
	if err != nil {
		return "", err
	}

	return s.jwt.GenerateAccessToken(acct.ID(), acct.TenantID(), acct.Email(), acct.Role())
}

// ChangePassword re-hashes and persists a new secret after checking the
// current one.
func (s *Service) ChangePassword(ctx context.Context, email, currentPassword, newPassword string) error {
	acct, err := findAccountByEmail(ctx, s.db, email)
	if err != nil {
		return err
	}

	if !CheckPassword(currentPassword, acct.PasswordHash()) {
		return ErrInvalidCredentials
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	acct.SetPasswordHash(hash)
	return s.db.WithContext(ctx).Save(acct.Model()).Error
}

func locked(acct Account, maxAttempts int, window time.Duration) bool {
	last := acct.LastLoginAttempt()
	if last == nil {
		return false
	}
	return acct.LoginAttempts() >= maxAttempts && time.Now().Before(last.Add(window))
}
