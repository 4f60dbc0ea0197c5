package models

import "github.com/google/uuid"

// Team groups members inside a tenant. MemberIDs mirrors Member.TeamID and
// both sides are updated together on assignment, reassignment and delete.
type Team struct {
	Base
	Name      string        `gorm:"not null" json:"name"`
	TenantID  uuid.UUID     `gorm:"type:uuid;index;not null" json:"tenant_id"`
	OwnerID   uuid.UUID     `gorm:"type:uuid;index" json:"owner_id"`
	Tags      StringArray   `gorm:"type:text" json:"tags,omitempty"`
	MemberIDs UUIDArray     `gorm:"type:text" json:"member_ids,omitempty"`
	Status    AccountStatus `gorm:"default:'active'" json:"status"`
}

func (Team) TableName() string {
	return "teams"
}
