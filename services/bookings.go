package services

import (
	"time"

	"onlyifyouknow-server/models"
)

// BookingQuote is a priced stay with the guest's trust discount applied.
type BookingQuote struct {
	NightlyPrice    float32 `json:"nightlyPrice"`
	Nights          int     `json:"nights"`
	DiscountPercent float32 `json:"discountPercent"`
	TotalPrice      float32 `json:"totalPrice"`
	Currency        string  `json:"currency"`
}

// BookingService prices stays and guards availability. Booking persistence
// and the provider calendar updates stay with the caller.
type BookingService struct {
	bookings BookingStore
	trust    TrustStore
}

func NewBookingService(bookings BookingStore, trust TrustStore) *BookingService {
	return &BookingService{bookings: bookings, trust: trust}
}

// nightsBetween counts nights from calendar dates, not elapsed hours, so a
// stay crossing a daylight-saving shift still prices every night.
func nightsBetween(checkIn, checkOut time.Time) int {
	a := time.Date(checkIn.Year(), checkIn.Month(), checkIn.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(checkOut.Year(), checkOut.Month(), checkOut.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a) / (24 * time.Hour))
}

// Quote prices a stay on the property for the guest, applying the trust
// discount the owner granted them.
func (s *BookingService) Quote(prop *models.Property, guestID uint, checkIn, checkOut time.Time) (*BookingQuote, error) {
	nights := nightsBetween(checkIn, checkOut)
	if nights <= 0 {
		return nil, NewValidationError("checkOut must be after checkIn")
	}
	discount, err := s.trust.GetTrustDiscount(prop.OwnerID, guestID)
	if err != nil {
		return nil, err
	}
	total := float32(nights) * prop.NightlyPrice * (1 - discount/100)
	return &BookingQuote{
		NightlyPrice:    prop.NightlyPrice,
		Nights:          nights,
		DiscountPercent: discount,
		TotalPrice:      total,
		Currency:        prop.Currency,
	}, nil
}

// EnsureAvailable rejects stays overlapping a confirmed booking. Back-to-back
// stays sharing a changeover day are allowed.
func (s *BookingService) EnsureAvailable(propertyID uint, checkIn, checkOut time.Time) error {
	overlap, err := s.bookings.CountOverlappingBookings(propertyID, checkIn, checkOut)
	if err != nil {
		return err
	}
	if overlap > 0 {
		return NewConflictError("dates are no longer available")
	}
	return nil
}
