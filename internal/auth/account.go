package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/solenhq/teamgate/internal/database/models"
	"gorm.io/gorm"
)

// Account is the capability surface shared by the two account kinds. Owner
// and member records live in separate tables with differing field sets; the
// login, OTP and password flows only ever see this interface.
type Account interface {
	ID() uuid.UUID
	Email() string
	Name() string
	TenantID() uuid.UUID
	Role() string
	Status() models.AccountStatus
	PasswordHash() string
	SetPasswordHash(hash string)

	LoginAttempts() int
	SetLoginAttempts(n int)
	LastLoginAttempt() *time.Time
	SetLastLoginAttempt(t time.Time)
	SetLastLogin(t time.Time)

	LoginOTP() *string
	// SetLoginOTP stamps the expiry on account kinds that track one.
	SetLoginOTP(code *string, expires *time.Time)
	LoginOTPExpires() *time.Time

	VerificationCode() *string
	SetVerificationCode(code *string)
	MarkEmailVerified()

	// Model returns the underlying record for persistence.
	Model() interface{}
}

type ownerAccount struct {
	o *models.Owner
}

func (a ownerAccount) ID() uuid.UUID                    { return a.o.ID }
func (a ownerAccount) Email() string                    { return a.o.Email }
func (a ownerAccount) Name() string                     { return a.o.Name }
func (a ownerAccount) TenantID() uuid.UUID              { return a.o.TenantID }
func (a ownerAccount) Role() string                     { return a.o.Role }
func (a ownerAccount) Status() models.AccountStatus     { return a.o.Status }
func (a ownerAccount) PasswordHash() string             { return a.o.PasswordHash }
func (a ownerAccount) SetPasswordHash(hash string)      { a.o.PasswordHash = hash }
func (a ownerAccount) LoginAttempts() int               { return a.o.LoginAttempts }
func (a ownerAccount) SetLoginAttempts(n int)           { a.o.LoginAttempts = n }
func (a ownerAccount) LastLoginAttempt() *time.Time     { return a.o.LastLoginAttempt }
func (a ownerAccount) SetLastLoginAttempt(t time.Time)  { a.o.LastLoginAttempt = &t }
func (a ownerAccount) SetLastLogin(t time.Time)         { a.o.LastLogin = &t }
func (a ownerAccount) LoginOTP() *string                { return a.o.LoginOTP }
func (a ownerAccount) LoginOTPExpires() *time.Time      { return a.o.LoginOTPExpires }
func (a ownerAccount) VerificationCode() *string        { return a.o.VerificationCode }
func (a ownerAccount) SetVerificationCode(code *string) { a.o.VerificationCode = code }
func (a ownerAccount) MarkEmailVerified()               { a.o.EmailVerified = true }
func (a ownerAccount) Model() interface{}               { return a.o }

func (a ownerAccount) SetLoginOTP(code *string, expires *time.Time) {
	a.o.LoginOTP = code
	a.o.LoginOTPExpires = expires
}

type memberAccount struct {
	m *models.Member
}

func (a memberAccount) ID() uuid.UUID                    { return a.m.ID }
func (a memberAccount) Email() string                    { return a.m.Email }
func (a memberAccount) Name() string                     { return a.m.Name }
func (a memberAccount) TenantID() uuid.UUID              { return a.m.TenantID }
func (a memberAccount) Status() models.AccountStatus     { return a.m.Status }
func (a memberAccount) PasswordHash() string             { return a.m.PasswordHash }
func (a memberAccount) SetPasswordHash(hash string)      { a.m.PasswordHash = hash }
func (a memberAccount) LoginAttempts() int               { return a.m.LoginAttempts }
func (a memberAccount) SetLoginAttempts(n int)           { a.m.LoginAttempts = n }
func (a memberAccount) LastLoginAttempt() *time.Time     { return a.m.LastLoginAttempt }
func (a memberAccount) SetLastLoginAttempt(t time.Time)  { a.m.LastLoginAttempt = &t }
func (a memberAccount) SetLastLogin(t time.Time)         { a.m.LastLogin = &t }
func (a memberAccount) LoginOTP() *string                { return a.m.LoginOTP }
func (a memberAccount) VerificationCode() *string        { return a.m.VerificationCode }
func (a memberAccount) SetVerificationCode(code *string) { a.m.VerificationCode = code }
func (a memberAccount) MarkEmailVerified()               { a.m.EmailVerified = true }
func (a memberAccount) Model() interface{}               { return a.m }

func (a memberAccount) Role() string {
	if len(a.m.Roles) > 0 {
		return a.m.Roles[0]
	}
	return "user"
}

// Members never track an OTP expiry; the expires argument is ignored.
func (a memberAccount) SetLoginOTP(code *string, expires *time.Time) {
	a.m.LoginOTP = code
}

func (a memberAccount) LoginOTPExpires() *time.Time { return nil }

// findAccountByEmail resolves an email across both account kinds, owners
// first. Emails are unique within each table, not across them.
func findAccountByEmail(ctx context.Context, db *gorm.DB, email string) (Account, error) {
	var owner models.Owner
	err := db.WithContext(ctx).Where("email = ?", email).First(&owner).Error
	if err == nil {
		return ownerAccount{&owner}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var member models.Member
	err = db.WithContext(ctx).Where("email = ?", email).First(&member).Error
	if err == nil {
		return memberAccount{&member}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return nil, ErrAccountNotFound
}

// findAccountByID resolves an account id across both account kinds.
func findAccountByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (Account, error) {
	var owner models.Owner
	err := db.WithContext(ctx).First(&owner, "id = ?", id).Error
	if err == nil {
		return ownerAccount{&owner}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var member models.Member
	err = db.WithContext(ctx).First(&member, "id = ?", id).Error
	if err == nil {
		return memberAccount{&member}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return nil, ErrAccountNotFound
}

// ResolveClaims maps validated access-token claims back to a persisted
// account, scoped by the claimed tenant id. The role claim picks the store:
// super_admin tokens resolve against owners, everything else against
// members.
func ResolveClaims(ctx context.Context, db *gorm.DB, claims *Claims) (Account, error) {
	if claims.Role == "super_admin" {
		var owner models.Owner
		err := db.WithContext(ctx).
			Where("id = ? AND tenant_id = ?", claims.AccountID, claims.TenantID).
			First(&owner).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrAccountNotFound
			}
			return nil, err
		}
		return ownerAccount{&owner}, nil
	}

	var member models.Member
	err := db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", claims.AccountID, claims.TenantID).
		First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return memberAccount{&member}, nil
}
