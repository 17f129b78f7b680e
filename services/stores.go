package services

import (
	"time"

	"onlyifyouknow-server/models"
)

// PropertyStore is the persistence surface the lifecycle service needs. The
// gorm implementation lives in storage; tests use in-memory fakes. All Get
// methods return (nil, nil) when no such row exists; a non-nil error means
// the store itself failed and is fatal to the operation.
type PropertyStore interface {
	GetProperty(id uint) (*models.Property, error)

	// TransitionProperty applies fields only while the property is still in
	// fromStatus and reports whether a row was updated. This is the
	// compare-and-swap guard every status write goes through.
	TransitionProperty(id uint, fromStatus string, fields map[string]interface{}) (bool, error)

	// ClaimForSync marks the property as syncing, succeeding only while the
	// status is approved_pending_provider and no other sync holds the claim.
	ClaimForSync(id uint) (bool, error)

	// ReleaseSync clears a failed sync claim, recording the error message.
	ReleaseSync(id uint, syncErr string) error

	// ListPropertiesByStatus returns properties in the given status ordered
	// by approval time ascending (oldest first).
	ListPropertiesByStatus(status string) ([]models.Property, error)
}

// InvitationStore is the persistence surface the invitation service needs.
type InvitationStore interface {
	CreateInvitation(inv *models.Invitation) error
	GetInvitationByToken(token string) (*models.Invitation, error)
	GetInvitation(id uint) (*models.Invitation, error)

	// UpdateInvitationStatus applies fields only while the invitation is
	// still in fromStatus and reports whether a row was updated. Same
	// compare-and-swap guard as TransitionProperty: a concurrent redemption
	// loses by seeing zero rows, never by overwriting.
	UpdateInvitationStatus(id uint, fromStatus string, fields map[string]interface{}) (bool, error)

	ListInvitationsByInviter(inviterID uint) ([]models.Invitation, error)
}

// UserStore resolves caller identity to role for capability checks and
// backs invitation-gated account creation.
type UserStore interface {
	GetUser(id uint) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	CreateUser(user *models.User) error
}

// AuditStore records one entry per lifecycle transition.
type AuditStore interface {
	CreateAuditLog(entry *models.AuditLog) error
}

// BookingStore is the persistence surface the booking service needs.
type BookingStore interface {
	// CountOverlappingBookings counts confirmed bookings on the property
	// whose stay overlaps [checkIn, checkOut). Back-to-back stays sharing a
	// changeover day do not overlap.
	CountOverlappingBookings(propertyID uint, checkIn, checkOut time.Time) (int64, error)
}

// TrustStore resolves the discount an owner grants a guest.
type TrustStore interface {
	// GetTrustDiscount returns the discount percent, or 0 when the owner has
	// not assigned the guest a trust level.
	GetTrustDiscount(ownerID, guestID uint) (float32, error)
}
