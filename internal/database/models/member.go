package models

import (
	"time"

	"github.com/google/uuid"
)

// Member is a tenant user created by an owner. It belongs to at most one
// team; Member.TeamID and Team.MemberIDs are kept in sync manually.
type Member struct {
	Base
	Name         string        `gorm:"not null" json:"name"`
	Email        string        `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string        `gorm:"not null" json:"-"`
	TenantID     uuid.UUID     `gorm:"type:uuid;index;not null" json:"tenant_id"`
	TeamID       *uuid.UUID    `gorm:"type:uuid;index" json:"team_id,omitempty"`
	Status       AccountStatus `gorm:"default:'pending'" json:"status"`

	EmailVerified    bool    `gorm:"default:false" json:"email_verified"`
	VerificationCode *string `json:"-"`

	// Members track no OTP expiry, only owners do.
	LoginOTP *string `json:"-"`

	LoginAttempts    int        `gorm:"default:0" json:"-"`
	LastLoginAttempt *time.Time `json:"-"`
	LastLogin        *time.Time `json:"last_login,omitempty"`

	Roles StringArray `gorm:"type:text" json:"roles,omitempty"`
	Tags  StringArray `gorm:"type:text" json:"tags,omitempty"`
}

func (Member) TableName() string {
	return "members"
}
