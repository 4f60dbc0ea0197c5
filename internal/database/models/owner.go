package models

import (
	"time"

	"github.com/google/uuid"
)

type AccountStatus string

const (
	StatusActive    AccountStatus = "active"
	StatusSuspended AccountStatus = "suspended"
	StatusPending   AccountStatus = "pending"
)

// Owner is the tenant-root account created at registration. It owns the
// tenant identifier every other record in the tenant carries.
type Owner struct {
	Base
	Name         string        `gorm:"not null" json:"name"`
	OrgName      string        `gorm:"not null" json:"org_name"`
	Email        string        `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string        `gorm:"not null" json:"-"`
	TenantID     uuid.UUID     `gorm:"type:uuid;index;not null" json:"tenant_id"`
	Role         string        `gorm:"default:'super_admin'" json:"role"`
	Status       AccountStatus `gorm:"default:'active'" json:"status"`

	EmailVerified    bool    `gorm:"default:false" json:"email_verified"`
	VerificationCode *string `json:"-"`

	// Login second factor. Expiry is tracked for owners only.
	LoginOTP        *string    `json:"-"`
	LoginOTPExpires *time.Time `json:"-"`

	LoginAttempts    int        `gorm:"default:0" json:"-"`
	LastLoginAttempt *time.Time `json:"-"`
	LastLogin        *time.Time `json:"last_login,omitempty"`

	MFAEnabled     bool `gorm:"default:false" json:"mfa_enabled"`
	ContactSupport bool `gorm:"default:true" json:"contact_support"`

	Domains StringArray `gorm:"type:text" json:"domains,omitempty"`
	IPs     StringArray `gorm:"type:text" json:"ips,omitempty"`
	Tags    StringArray `gorm:"type:text" json:"tags,omitempty"`

	// Owned teams, maintained manually alongside Team rows.
	TeamIDs UUIDArray `gorm:"type:text" json:"team_ids,omitempty"`
}

func (Owner) TableName() string {
	return "owners"
}
