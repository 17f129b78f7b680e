package models

import (
	"time"
)

// TrustLevel is an owner-defined discount tier for a guest. The discount
// applies to every booking that guest makes on that owner's properties.
type TrustLevel struct {
	ID      uint `json:"id" gorm:"primaryKey"`
	OwnerID uint `json:"ownerID" gorm:"not null;index;uniqueIndex:idx_owner_guest"`
	GuestID uint `json:"guestID" gorm:"not null;index;uniqueIndex:idx_owner_guest"`

	Owner User `json:"owner" gorm:"foreignKey:OwnerID"`
	Guest User `json:"guest" gorm:"foreignKey:GuestID"`

	// 1..3, higher means more trusted
	Level           int     `json:"level" gorm:"not null"`
	DiscountPercent float32 `json:"discountPercent" gorm:"not null"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
