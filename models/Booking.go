package models

import (
	"time"
)

// Booking statuses.
const (
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
)

type Booking struct {
	ID         uint     `json:"id" gorm:"primaryKey"`
	PropertyID uint     `json:"propertyID" gorm:"not null;index"`
	Property   Property `json:"property" gorm:"foreignKey:PropertyID"`
	GuestID    uint     `json:"guestID" gorm:"not null;index"`
	Guest      User     `json:"guest" gorm:"foreignKey:GuestID"`

	Reference string    `json:"reference" gorm:"uniqueIndex;size:36"`
	CheckIn   time.Time `json:"checkIn" gorm:"not null"`
	CheckOut  time.Time `json:"checkOut" gorm:"not null"`
	NumGuests int       `json:"numGuests"`

	// Price breakdown captured at booking time
	NightlyPrice    float32 `json:"nightlyPrice"`
	Nights          int     `json:"nights"`
	DiscountPercent float32 `json:"discountPercent"`
	TotalPrice      float32 `json:"totalPrice"`
	Currency        string  `json:"currency"`

	Status string `json:"status" gorm:"type:varchar(16);default:'confirmed';index"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
