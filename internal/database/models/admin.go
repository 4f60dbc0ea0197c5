package models

import "time"

// Admin is a platform-level operator account. It carries no tenant id and
// never appears in tenant-scoped lookups.
type Admin struct {
	Base
	Name         string        `gorm:"not null" json:"name"`
	Email        string        `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string        `gorm:"not null" json:"-"`
	Roles        StringArray   `gorm:"type:text" json:"roles,omitempty"`
	Status       AccountStatus `gorm:"default:'active'" json:"status"`
	LastLogin    *time.Time    `json:"last_login,omitempty"`
}

func (Admin) TableName() string {
	return "admins"
}
