package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"onlyifyouknow-server/models"

	"gorm.io/datatypes"
)

// BookingProvider is the external provider surface the lifecycle service
// consumes. Implemented by Beds24Client; tests use fakes.
type BookingProvider interface {
	CreateListing(ctx context.Context, p *models.Property) (*ProviderListing, error)
}

// LifecycleService moves a property through
// draft -> pending_approval -> approved_pending_provider -> active,
// talking to the external booking provider exactly once at enlistment and
// writing an audit entry at every transition.
type LifecycleService struct {
	properties PropertyStore
	users      UserStore
	audit      AuditStore
	provider   BookingProvider
	now        func() time.Time
}

func NewLifecycleService(properties PropertyStore, users UserStore, audit AuditStore, provider BookingProvider) *LifecycleService {
	return &LifecycleService{
		properties: properties,
		users:      users,
		audit:      audit,
		provider:   provider,
		now:        time.Now,
	}
}

// SubmitForApproval moves an owner's draft property into the admin review
// queue.
func (s *LifecycleService) SubmitForApproval(propertyID, ownerID uint) (*models.Property, error) {
	prop, err := s.properties.GetProperty(propertyID)
	if err != nil {
		return nil, err
	}
	if prop == nil {
		return nil, NewNotFoundError("property not found")
	}
	if prop.OwnerID != ownerID {
		return nil, NewAuthorizationError("caller does not own this property")
	}
	if !models.CanTransitionProperty(prop.Status, models.PropertyStatusPendingApproval) {
		return nil, NewInvalidStateError(fmt.Sprintf("property is %s, must be %s", prop.Status, models.PropertyStatusDraft))
	}

	now := s.now()
	ok, err := s.properties.TransitionProperty(propertyID, models.PropertyStatusDraft, map[string]interface{}{
		"status":       models.PropertyStatusPendingApproval,
		"submitted_at": &now,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		// Someone else moved it between the read and the write
		return nil, NewInvalidStateError("property is no longer in draft")
	}

	before := *prop
	prop.Status = models.PropertyStatusPendingApproval
	prop.SubmittedAt = &now
	s.recordAudit(ownerID, "property.submit_for_approval", prop.ID, &before, prop, "")
	return prop, nil
}

// Approve moves a property from pending_approval to
// approved_pending_provider. Caller must have admin capability.
func (s *LifecycleService) Approve(propertyID, adminID uint, notes string) (*models.Property, error) {
	if err := s.requireAdmin(adminID); err != nil {
		return nil, err
	}

	prop, err := s.properties.GetProperty(propertyID)
	if err != nil {
		return nil, err
	}
	if prop == nil {
		return nil, NewNotFoundError("property not found")
	}
	if !models.CanTransitionProperty(prop.Status, models.PropertyStatusApprovedPendingProvider) {
		return nil, NewInvalidStateError(fmt.Sprintf("property is %s, must be %s", prop.Status, models.PropertyStatusPendingApproval))
	}

	now := s.now()
	ok, err := s.properties.TransitionProperty(propertyID, models.PropertyStatusPendingApproval, map[string]interface{}{
		"status":       models.PropertyStatusApprovedPendingProvider,
		"review_notes": notes,
		"approved_at":  &now,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, NewInvalidStateError("property is no longer pending approval")
	}

	before := *prop
	prop.Status = models.PropertyStatusApprovedPendingProvider
	prop.ReviewNotes = notes
	prop.ApprovedAt = &now
	s.recordAudit(adminID, "property.approve", prop.ID, &before, prop, notes)
	return prop, nil
}

// Reject moves a property from pending_approval to rejected.
func (s *LifecycleService) Reject(propertyID, adminID uint, notes string) (*models.Property, error) {
	if err := s.requireAdmin(adminID); err != nil {
		return nil, err
	}
	if notes == "" {
		return nil, NewValidationError("rejection notes are required")
	}

	prop, err := s.properties.GetProperty(propertyID)
	if err != nil {
		return nil, err
	}
	if prop == nil {
		return nil, NewNotFoundError("property not found")
	}
	if !models.CanTransitionProperty(prop.Status, models.PropertyStatusRejected) {
		return nil, NewInvalidStateError(fmt.Sprintf("property is %s, must be %s", prop.Status, models.PropertyStatusPendingApproval))
	}

	ok, err := s.properties.TransitionProperty(propertyID, models.PropertyStatusPendingApproval, map[string]interface{}{
		"status":       models.PropertyStatusRejected,
		"review_notes": notes,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, NewInvalidStateError("property is no longer pending approval")
	}

	before := *prop
	prop.Status = models.PropertyStatusRejected
	prop.ReviewNotes = notes
	s.recordAudit(adminID, "property.reject", prop.ID, &before, prop, notes)
	return prop, nil
}

// EnlistToProvider registers an approved property with the external booking
// provider and activates it. Two concurrent calls on the same property race
// for a sync claim; the loser fails with a retryable conflict, so at most one
// external listing is ever created.
func (s *LifecycleService) EnlistToProvider(ctx context.Context, propertyID, adminID uint) (*models.Property, error) {
	if err := s.requireAdmin(adminID); err != nil {
		return nil, err
	}

	prop, err := s.properties.GetProperty(propertyID)
	if err != nil {
		return nil, err
	}
	if prop == nil {
		return nil, NewNotFoundError("property not found")
	}
	if !models.CanTransitionProperty(prop.Status, models.PropertyStatusActive) {
		return nil, NewInvalidStateError(fmt.Sprintf("property is %s, must be %s", prop.Status, models.PropertyStatusApprovedPendingProvider))
	}

	claimed, err := s.properties.ClaimForSync(propertyID)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, NewConflictError("another enlistment is already in progress")
	}

	listing, provErr := s.provider.CreateListing(ctx, prop)
	if provErr != nil {
		// Recover locally: release the claim, capture the error, leave the
		// status untouched so the admin can retry.
		msg := provErr.Error()
		if relErr := s.properties.ReleaseSync(propertyID, msg); relErr != nil {
			log.Printf("failed to release sync claim for property %d: %v", propertyID, relErr)
		}
		if ErrCode(provErr) != "" {
			return nil, provErr
		}
		return nil, NewProviderError("provider listing creation failed", provErr)
	}

	metadata, _ := json.Marshal(map[string]interface{}{
		"provider":   "beds24",
		"propId":     listing.PropID,
		"roomId":     listing.RoomID,
		"demo":       listing.Demo,
		"enlistedBy": adminID,
	})
	now := s.now()
	ok, err := s.properties.TransitionProperty(propertyID, models.PropertyStatusApprovedPendingProvider, map[string]interface{}{
		"status":             models.PropertyStatusActive,
		"beds24_property_id": &listing.PropID,
		"sync_status":        models.SyncStatusSynced,
		"sync_error":         "",
		"sync_metadata":      datatypes.JSON(metadata),
		"enlisted_at":        &now,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		// The claim should make this unreachable; surface it loudly if a
		// store without claim semantics is ever wired in.
		return nil, NewConflictError("property state changed during enlistment")
	}

	before := *prop
	prop.Status = models.PropertyStatusActive
	prop.Beds24PropertyID = &listing.PropID
	prop.SyncStatus = models.SyncStatusSynced
	prop.SyncError = ""
	prop.SyncMetadata = datatypes.JSON(metadata)
	prop.EnlistedAt = &now
	s.recordAudit(adminID, "property.enlist", prop.ID, &before, prop, "")
	return prop, nil
}

// ListPendingEnlistment returns properties awaiting provider enlistment,
// oldest approval first.
func (s *LifecycleService) ListPendingEnlistment() ([]models.Property, error) {
	return s.properties.ListPropertiesByStatus(models.PropertyStatusApprovedPendingProvider)
}

func (s *LifecycleService) requireAdmin(userID uint) error {
	user, err := s.users.GetUser(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return NewAuthorizationError("unknown caller")
	}
	if !models.IsAdminRole(user.Role) {
		return NewAuthorizationError("admin access required")
	}
	return nil
}

func (s *LifecycleService) recordAudit(actorID uint, action string, resourceID uint, before, after interface{}, notes string) {
	entry := models.AuditLog{
		ActorUserID:  actorID,
		Action:       action,
		ResourceType: "property",
		ResourceID:   resourceID,
		Notes:        notes,
	}
	if before != nil {
		if b, err := json.Marshal(before); err == nil {
			entry.BeforeJSON = string(b)
		}
	}
	if after != nil {
		if a, err := json.Marshal(after); err == nil {
			entry.AfterJSON = string(a)
		}
	}
	if err := s.audit.CreateAuditLog(&entry); err != nil {
		log.Printf("failed to write audit log for %s on property %d: %v", action, resourceID, err)
	}
}
