package models

import (
	"time"
)

// Invitation statuses. pending -> accepted/declined/cancelled are stored
// transitions; expired is derived from ExpiresAt at read time.
const (
	InvitationStatusPending   = "pending"
	InvitationStatusAccepted  = "accepted"
	InvitationStatusDeclined  = "declined"
	InvitationStatusExpired   = "expired"
	InvitationStatusCancelled = "cancelled"
)

// Invitation role types a token can grant.
const (
	InvitationTypeUser  = "user"
	InvitationTypeOwner = "owner"
	InvitationTypeAdmin = "admin"
)

type Invitation struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Email       string `json:"email" gorm:"index;not null"`
	InviteeName string `json:"inviteeName"`
	// user, owner, admin
	InvitedType     string `json:"invitedType" gorm:"size:16;not null"`
	PersonalMessage string `json:"personalMessage" gorm:"type:text"`

	InviterID uint `json:"inviterID" gorm:"not null;index"`
	Inviter   User `json:"inviter" gorm:"foreignKey:InviterID"`

	// Opaque single-use token. Pointer so NULL never trips the unique index.
	Token     *string   `json:"token" gorm:"uniqueIndex;size:64"`
	ExpiresAt time.Time `json:"expiresAt"`

	Status      string     `json:"status" gorm:"index;size:16"`
	RespondedAt *time.Time `json:"respondedAt"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
