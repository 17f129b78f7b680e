package services

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"strings"
	"time"

	"onlyifyouknow-server/models"
)

// Invitations stay redeemable this long after creation.
const invitationTTL = 7 * 24 * time.Hour

// Reasons a token fails validation.
const (
	InvitationReasonNotFound    = "not_found"
	InvitationReasonExpired     = "expired"
	InvitationReasonAlreadyUsed = "already_used"
)

// InvitationService issues single-use, time-boxed tokens and gates their
// redemption. Email delivery is a separate step owned by the caller.
type InvitationService struct {
	invitations InvitationStore
	audit       AuditStore
	now         func() time.Time
}

func NewInvitationService(invitations InvitationStore, audit AuditStore) *InvitationService {
	return &InvitationService{
		invitations: invitations,
		audit:       audit,
		now:         time.Now,
	}
}

// InvitationValidation is the outcome of a non-mutating token check.
type InvitationValidation struct {
	Valid      bool               `json:"valid"`
	Reason     string             `json:"reason,omitempty"`
	Invitation *models.Invitation `json:"invitation,omitempty"`
}

func generateInviteToken(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return ""
	}
	return hex.EncodeToString(b)
}

// Create persists a pending invitation with a fresh opaque token. Multiple
// pending invitations to the same email are allowed.
func (s *InvitationService) Create(email, name, invitedType, message string, inviterID uint) (*models.Invitation, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, NewValidationError("email is required")
	}
	switch invitedType {
	case models.InvitationTypeUser, models.InvitationTypeOwner, models.InvitationTypeAdmin:
	default:
		return nil, NewValidationError("invitedType must be user, owner or admin")
	}

	token := generateInviteToken(24)
	if token == "" {
		return nil, NewValidationError("could not generate invitation token")
	}

	inv := models.Invitation{
		Email:           email,
		InviteeName:     name,
		InvitedType:     invitedType,
		PersonalMessage: message,
		InviterID:       inviterID,
		Token:           &token,
		ExpiresAt:       s.now().Add(invitationTTL),
		Status:          models.InvitationStatusPending,
	}
	if err := s.invitations.CreateInvitation(&inv); err != nil {
		return nil, err
	}
	s.recordAudit(inviterID, "invitation.create", inv.ID, nil, &inv)
	return &inv, nil
}

// Validate checks a token without mutating anything. Expiry is derived from
// the timestamp, so a stale pending row still reports expired.
func (s *InvitationService) Validate(token string) (*InvitationValidation, error) {
	inv, err := s.invitations.GetInvitationByToken(token)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return &InvitationValidation{Valid: false, Reason: InvitationReasonNotFound}, nil
	}
	if s.now().After(inv.ExpiresAt) {
		return &InvitationValidation{Valid: false, Reason: InvitationReasonExpired, Invitation: inv}, nil
	}
	if inv.Status != models.InvitationStatusPending {
		return &InvitationValidation{Valid: false, Reason: InvitationReasonAlreadyUsed, Invitation: inv}, nil
	}
	return &InvitationValidation{Valid: true, Invitation: inv}, nil
}

// Respond accepts or declines a pending invitation. On accept the caller is
// responsible for creating the account with the invitation's role.
func (s *InvitationService) Respond(token, action string) (*models.Invitation, error) {
	var status string
	switch action {
	case "accept":
		status = models.InvitationStatusAccepted
	case "decline":
		status = models.InvitationStatusDeclined
	default:
		return nil, NewValidationError("action must be accept or decline")
	}

	check, err := s.Validate(token)
	if err != nil {
		return nil, err
	}
	if !check.Valid {
		return nil, redemptionError(check.Reason)
	}

	inv := check.Invitation
	now := s.now()
	ok, err := s.invitations.UpdateInvitationStatus(inv.ID, models.InvitationStatusPending, map[string]interface{}{
		"status":       status,
		"responded_at": &now,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		// A concurrent redemption won between the validate read and this
		// write.
		return nil, NewInvalidStateError("invitation has already been used")
	}
	before := *inv
	inv.Status = status
	inv.RespondedAt = &now
	s.recordAudit(inv.InviterID, "invitation."+status, inv.ID, &before, inv)
	return inv, nil
}

// Cancel withdraws a pending invitation. Only the inviter may cancel.
func (s *InvitationService) Cancel(invitationID, inviterID uint) (*models.Invitation, error) {
	inv, err := s.invitations.GetInvitation(invitationID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, NewNotFoundError("invitation not found")
	}
	if inv.InviterID != inviterID {
		return nil, NewAuthorizationError("only the inviter can cancel an invitation")
	}
	if inv.Status != models.InvitationStatusPending {
		return nil, NewInvalidStateError("invitation is not pending")
	}

	ok, err := s.invitations.UpdateInvitationStatus(inv.ID, models.InvitationStatusPending, map[string]interface{}{
		"status": models.InvitationStatusCancelled,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, NewInvalidStateError("invitation is not pending")
	}
	before := *inv
	inv.Status = models.InvitationStatusCancelled
	s.recordAudit(inviterID, "invitation.cancel", inv.ID, &before, inv)
	return inv, nil
}

// ListByInviter returns an inviter's invitations, with expiry derived onto
// any stale pending rows.
func (s *InvitationService) ListByInviter(inviterID uint) ([]models.Invitation, error) {
	invites, err := s.invitations.ListInvitationsByInviter(inviterID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	for i := range invites {
		if invites[i].Status == models.InvitationStatusPending && now.After(invites[i].ExpiresAt) {
			invites[i].Status = models.InvitationStatusExpired
		}
	}
	return invites, nil
}

// redemptionError maps a validation failure reason onto the typed error a
// redeeming operation returns.
func redemptionError(reason string) error {
	switch reason {
	case InvitationReasonNotFound:
		return NewNotFoundError("invitation not found")
	case InvitationReasonExpired:
		return NewInvalidStateError("invitation has expired")
	default:
		return NewInvalidStateError("invitation has already been used")
	}
}

func (s *InvitationService) recordAudit(actorID uint, action string, resourceID uint, before, after interface{}) {
	entry := models.AuditLog{
		ActorUserID:  actorID,
		Action:       action,
		ResourceType: "invitation",
		ResourceID:   resourceID,
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
		log.Printf("failed to write audit log for %s on invitation %d: %v", action, resourceID, err)
	}
}
