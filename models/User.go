package models

import (
	"encoding/json"

	"gorm.io/gorm"
)

// User roles. Owners list properties and invite guests; admins moderate.
const (
	RoleUser       = "user"
	RoleOwner      = "owner"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
)

type User struct {
	gorm.Model
	FirstName  string     `json:"firstName"`
	LastName   string     `json:"lastName"`
	Email      string     `json:"email" gorm:"uniqueIndex"`
	Password   string     `json:"password"`
	AvatarURL  string     `json:"avatarURL"`
	Bio        string     `json:"bio"`
	Properties []Property `json:"properties" gorm:"foreignKey:OwnerID;references:ID"`
	Role       string     `json:"role" gorm:"type:varchar(20);default:user;index"`

	// Set when the account was created by redeeming an invitation.
	InvitationID *uint `json:"invitationID"`
}

// IsAdminRole reports whether the role carries admin capability.
func IsAdminRole(role string) bool {
	return role == RoleAdmin || role == RoleSuperAdmin
}

// Custom JSON marshaling: never leak the password hash.
func (u *User) MarshalJSON() ([]byte, error) {
	type Alias User
	aux := &struct {
		Password string `json:"password,omitempty"`
		*Alias
	}{
		Alias: (*Alias)(u),
	}
	aux.Password = ""
	return json.Marshal(aux)
}
