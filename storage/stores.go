package storage

import (
	"errors"
	"strings"
	"time"

	"onlyifyouknow-server/models"

	"gorm.io/gorm"
)

// Gorm-backed implementations of the service store interfaces. Get methods
// return (nil, nil) for missing rows so services can map those to their own
// not-found failures.

type GormPropertyStore struct {
	DB *gorm.DB
}

func NewGormPropertyStore(db *gorm.DB) *GormPropertyStore {
	return &GormPropertyStore{DB: db}
}

func (s *GormPropertyStore) GetProperty(id uint) (*models.Property, error) {
	var prop models.Property
	if err := s.DB.First(&prop, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &prop, nil
}

func (s *GormPropertyStore) TransitionProperty(id uint, fromStatus string, fields map[string]interface{}) (bool, error) {
	res := s.DB.Model(&models.Property{}).
		Where("id = ? AND status = ?", id, fromStatus).
		Updates(fields)
	return res.RowsAffected > 0, res.Error
}

func (s *GormPropertyStore) ClaimForSync(id uint) (bool, error) {
	res := s.DB.Model(&models.Property{}).
		Where("id = ? AND status = ? AND sync_status <> ?",
			id, models.PropertyStatusApprovedPendingProvider, models.SyncStatusSyncing).
		Updates(map[string]interface{}{"sync_status": models.SyncStatusSyncing})
	return res.RowsAffected > 0, res.Error
}

func (s *GormPropertyStore) ReleaseSync(id uint, syncErr string) error {
	return s.DB.Model(&models.Property{}).
		Where("id = ? AND sync_status = ?", id, models.SyncStatusSyncing).
		Updates(map[string]interface{}{
			"sync_status": models.SyncStatusError,
			"sync_error":  syncErr,
		}).Error
}

func (s *GormPropertyStore) ListPropertiesByStatus(status string) ([]models.Property, error) {
	var props []models.Property
	err := s.DB.Where("status = ?", status).
		Order("approved_at ASC NULLS LAST").
		Find(&props).Error
	return props, err
}

type GormInvitationStore struct {
	DB *gorm.DB
}

func NewGormInvitationStore(db *gorm.DB) *GormInvitationStore {
	return &GormInvitationStore{DB: db}
}

func (s *GormInvitationStore) CreateInvitation(inv *models.Invitation) error {
	return s.DB.Create(inv).Error
}

func (s *GormInvitationStore) GetInvitationByToken(token string) (*models.Invitation, error) {
	var inv models.Invitation
	if err := s.DB.Where("token = ?", token).First(&inv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &inv, nil
}

func (s *GormInvitationStore) GetInvitation(id uint) (*models.Invitation, error) {
	var inv models.Invitation
	if err := s.DB.First(&inv, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &inv, nil
}

func (s *GormInvitationStore) UpdateInvitationStatus(id uint, fromStatus string, fields map[string]interface{}) (bool, error) {
	res := s.DB.Model(&models.Invitation{}).
		Where("id = ? AND status = ?", id, fromStatus).
		Updates(fields)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *GormInvitationStore) ListInvitationsByInviter(inviterID uint) ([]models.Invitation, error) {
	var invites []models.Invitation
	err := s.DB.Where("inviter_id = ?", inviterID).
		Order("created_at DESC").
		Find(&invites).Error
	return invites, err
}

type GormUserStore struct {
	DB *gorm.DB
}

func NewGormUserStore(db *gorm.DB) *GormUserStore {
	return &GormUserStore{DB: db}
}

func (s *GormUserStore) GetUser(id uint) (*models.User, error) {
	var user models.User
	if err := s.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (s *GormUserStore) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.DB.Where("email = ?", strings.ToLower(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (s *GormUserStore) CreateUser(user *models.User) error {
	user.Email = strings.ToLower(user.Email)
	return s.DB.Create(user).Error
}

type GormAuditStore struct {
	DB *gorm.DB
}

func NewGormAuditStore(db *gorm.DB) *GormAuditStore {
	return &GormAuditStore{DB: db}
}

func (s *GormAuditStore) CreateAuditLog(entry *models.AuditLog) error {
	return s.DB.Create(entry).Error
}

type GormBookingStore struct {
	DB *gorm.DB
}

func NewGormBookingStore(db *gorm.DB) *GormBookingStore {
	return &GormBookingStore{DB: db}
}

func (s *GormBookingStore) CountOverlappingBookings(propertyID uint, checkIn, checkOut time.Time) (int64, error) {
	var n int64
	err := s.DB.Model(&models.Booking{}).
		Where("property_id = ? AND status = ? AND check_in < ? AND check_out > ?",
			propertyID, models.BookingStatusConfirmed, checkOut, checkIn).
		Count(&n).Error
	return n, err
}

type GormTrustStore struct {
	DB *gorm.DB
}

func NewGormTrustStore(db *gorm.DB) *GormTrustStore {
	return &GormTrustStore{DB: db}
}

func (s *GormTrustStore) GetTrustDiscount(ownerID, guestID uint) (float32, error) {
	var tl models.TrustLevel
	if err := s.DB.Where("owner_id = ? AND guest_id = ?", ownerID, guestID).First(&tl).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return tl.DiscountPercent, nil
}
