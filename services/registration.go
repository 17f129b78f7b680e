package services

import (
	"onlyifyouknow-server/models"
)

// RegistrationInput carries the invitee-supplied account fields. The email
// and role always come from the invitation, never from the caller.
type RegistrationInput struct {
	FirstName      string
	LastName       string
	HashedPassword string
}

// RegistrationService turns a redeemed invitation into an account.
type RegistrationService struct {
	users       UserStore
	invitations *InvitationService
}

func NewRegistrationService(users UserStore, invitations *InvitationService) *RegistrationService {
	return &RegistrationService{users: users, invitations: invitations}
}

// Register creates the account an invitation token grants. The token is
// consumed last: a duplicate email or a failed account write leaves the
// invitation pending so the invitee can retry. Two concurrent registrations
// with the same token collapse onto the email unique index, so at most one
// account is created either way.
func (s *RegistrationService) Register(token string, input RegistrationInput) (*models.User, error) {
	check, err := s.invitations.Validate(token)
	if err != nil {
		return nil, err
	}
	if !check.Valid {
		return nil, redemptionError(check.Reason)
	}
	inv := check.Invitation

	existing, err := s.users.GetUserByEmail(inv.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &Error{Code: CodeConflict, Message: "email is already registered"}
	}

	user := models.User{
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        inv.Email,
		Password:     input.HashedPassword,
		Role:         inv.InvitedType,
		InvitationID: &inv.ID,
	}
	if err := s.users.CreateUser(&user); err != nil {
		return nil, err
	}

	if _, err := s.invitations.Respond(token, "accept"); err != nil {
		// The account exists; surface the inconsistency instead of hiding it.
		return nil, err
	}
	return &user, nil
}
