package services

import (
	"testing"
	"time"

	"onlyifyouknow-server/models"
)

func newTestInvitations() (*InvitationService, *fakeInvitationStore, *fakeAuditStore) {
	store := newFakeInvitationStore()
	audit := &fakeAuditStore{}
	return NewInvitationService(store, audit), store, audit
}

// advance pins the service clock and moves it forward between steps.
func advance(svc *InvitationService, base time.Time, d time.Duration) {
	at := base.Add(d)
	svc.now = func() time.Time { return at }
}

func TestCreateInvitation(t *testing.T) {
	svc, _, audit := newTestInvitations()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	advance(svc, base, 0)

	inv, err := svc.Create("  Friend@Example.COM ", "Friend", models.InvitationTypeOwner, "come join", adminID)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if inv.Email != "friend@example.com" {
		t.Fatalf("email = %q, want normalized lowercase", inv.Email)
	}
	if inv.Token == nil || len(*inv.Token) != 48 {
		t.Fatal("expected a 48-char hex token")
	}
	if inv.Status != models.InvitationStatusPending {
		t.Fatalf("status = %s, want pending", inv.Status)
	}
	if got, want := inv.ExpiresAt, base.Add(7*24*time.Hour); !got.Equal(want) {
		t.Fatalf("ExpiresAt = %v, want %v", got, want)
	}
	if got := audit.actions(); len(got) != 1 || got[0] != "invitation.create" {
		t.Fatalf("audit actions = %v", got)
	}
}

func TestCreateInvitationValidation(t *testing.T) {
	svc, _, _ := newTestInvitations()

	if _, err := svc.Create("", "x", models.InvitationTypeUser, "", adminID); ErrCode(err) != CodeValidation {
		t.Fatalf("empty email: got %v", err)
	}
	if _, err := svc.Create("a@b.com", "x", "landlord", "", adminID); ErrCode(err) != CodeValidation {
		t.Fatalf("bad invitedType: got %v", err)
	}
}

func TestCreateAllowsDuplicatePending(t *testing.T) {
	svc, store, _ := newTestInvitations()

	first, err := svc.Create("a@b.com", "x", models.InvitationTypeUser, "", adminID)
	if err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	second, err := svc.Create("a@b.com", "x", models.InvitationTypeUser, "", adminID)
	if err != nil {
		t.Fatalf("second create failed: %v", err)
	}
	if *first.Token == *second.Token {
		t.Fatal("tokens must be unique per invitation")
	}
	if len(store.invites) != 2 {
		t.Fatalf("stored %d invitations, want 2", len(store.invites))
	}
}

func TestValidateToken(t *testing.T) {
	svc, _, _ := newTestInvitations()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	advance(svc, base, 0)

	inv, err := svc.Create("a@b.com", "x", models.InvitationTypeUser, "", adminID)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	check, err := svc.Validate(*inv.Token)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if !check.Valid || check.Invitation == nil || check.Invitation.ID != inv.ID {
		t.Fatalf("fresh token should be valid: %+v", check)
	}

	check, err = svc.Validate("no-such-token")
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if check.Valid || check.Reason != InvitationReasonNotFound {
		t.Fatalf("unknown token: %+v", check)
	}
}

func TestValidateExpiredAfterSevenDays(t *testing.T) {
	svc, _, _ := newTestInvitations()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	advance(svc, base, 0)

	inv, err := svc.Create("a@b.com", "x", models.InvitationTypeUser, "", adminID)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// Still valid just inside the window.
	advance(svc, base, 7*24*time.Hour-time.Minute)
	check, _ := svc.Validate(*inv.Token)
	if !check.Valid {
		t.Fatalf("token should still be valid inside 7 days: %+v", check)
	}

	// Expired on day 8, even though the stored row still says pending.
	advance(svc, base, 8*24*time.Hour)
	check, _ = svc.Validate(*inv.Token)
	if check.Valid || check.Reason != InvitationReasonExpired {
		t.Fatalf("day-8 token: %+v", check)
	}
}

func TestRespondAccept(t *testing.T) {
	svc, store, audit := newTestInvitations()

	inv, _ := svc.Create("a@b.com", "x", models.InvitationTypeOwner, "", adminID)
	got, err := svc.Respond(*inv.Token, "accept")
	if err != nil {
		t.Fatalf("respond failed: %v", err)
	}
	if got.Status != models.InvitationStatusAccepted || got.RespondedAt == nil {
		t.Fatalf("accepted invitation = %+v", got)
	}
	if stored, _ := store.GetInvitation(inv.ID); stored.Status != models.InvitationStatusAccepted {
		t.Fatalf("stored status = %s", stored.Status)
	}

	// A second redemption of the same token fails.
	if _, err := svc.Respond(*inv.Token, "accept"); ErrCode(err) != CodeInvalidState {
		t.Fatalf("second accept: got %v", err)
	}
	check, _ := svc.Validate(*inv.Token)
	if check.Valid || check.Reason != InvitationReasonAlreadyUsed {
		t.Fatalf("used token: %+v", check)
	}

	actions := audit.actions()
	if len(actions) != 2 || actions[1] != "invitation.accepted" {
		t.Fatalf("audit actions = %v", actions)
	}
}

func TestRespondDecline(t *testing.T) {
	svc, _, _ := newTestInvitations()

	inv, _ := svc.Create("a@b.com", "x", models.InvitationTypeUser, "", adminID)
	got, err := svc.Respond(*inv.Token, "decline")
	if err != nil {
		t.Fatalf("respond failed: %v", err)
	}
	if got.Status != models.InvitationStatusDeclined {
		t.Fatalf("status = %s, want declined", got.Status)
	}
}

func TestRespondRejectsBadInput(t *testing.T) {
	svc, _, _ := newTestInvitations()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	advance(svc, base, 0)

	if _, err := svc.Respond("whatever", "maybe"); ErrCode(err) != CodeValidation {
		t.Fatalf("bad action: got %v", err)
	}
	if _, err := svc.Respond("no-such-token", "accept"); ErrCode(err) != CodeNotFound {
		t.Fatalf("unknown token: got %v", err)
	}

	inv, _ := svc.Create("a@b.com", "x", models.InvitationTypeUser, "", adminID)
	advance(svc, base, 8*24*time.Hour)
	if _, err := svc.Respond(*inv.Token, "accept"); ErrCode(err) != CodeInvalidState {
		t.Fatalf("expired token: got %v", err)
	}
}

// staleReadInvitationStore serves reads from a snapshot taken before a
// concurrent redemption landed, so the conditional status write is the only
// thing standing between two racing responders.
type staleReadInvitationStore struct {
	*fakeInvitationStore
}

func (s *staleReadInvitationStore) GetInvitationByToken(token string) (*models.Invitation, error) {
	inv, err := s.fakeInvitationStore.GetInvitationByToken(token)
	if inv != nil {
		inv.Status = models.InvitationStatusPending
		inv.RespondedAt = nil
	}
	return inv, err
}

func TestRespondLostRaceReportsAlreadyUsed(t *testing.T) {
	store := newFakeInvitationStore()
	svc := NewInvitationService(store, &fakeAuditStore{})

	inv, _ := svc.Create("a@b.com", "x", models.InvitationTypeUser, "", adminID)
	if _, err := svc.Respond(*inv.Token, "accept"); err != nil {
		t.Fatalf("accept failed: %v", err)
	}

	// A racer that validated before the accept landed sees a pending row but
	// must lose on the conditional write.
	racer := NewInvitationService(&staleReadInvitationStore{store}, &fakeAuditStore{})
	_, err := racer.Respond(*inv.Token, "decline")
	if ErrCode(err) != CodeInvalidState {
		t.Fatalf("lost race: got %v, want invalid_state", err)
	}

	stored, _ := store.GetInvitation(inv.ID)
	if stored.Status != models.InvitationStatusAccepted {
		t.Fatalf("stored status = %s, the winner's accept must stand", stored.Status)
	}
}

func TestCancelInvitation(t *testing.T) {
	svc, store, _ := newTestInvitations()

	inv, _ := svc.Create("a@b.com", "x", models.InvitationTypeUser, "", adminID)

	if _, err := svc.Cancel(inv.ID, ownerAID); ErrCode(err) != CodeAuthorization {
		t.Fatalf("non-inviter cancel: got %v", err)
	}

	got, err := svc.Cancel(inv.ID, adminID)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if got.Status != models.InvitationStatusCancelled {
		t.Fatalf("status = %s, want cancelled", got.Status)
	}
	if stored, _ := store.GetInvitation(inv.ID); stored.Status != models.InvitationStatusCancelled {
		t.Fatalf("stored status = %s", stored.Status)
	}

	// Cancelled invitations cannot be cancelled again or redeemed.
	if _, err := svc.Cancel(inv.ID, adminID); ErrCode(err) != CodeInvalidState {
		t.Fatalf("double cancel: got %v", err)
	}
	if _, err := svc.Respond(*inv.Token, "accept"); ErrCode(err) != CodeInvalidState {
		t.Fatalf("redeem after cancel: got %v", err)
	}
}

func TestListByInviterDerivesExpiry(t *testing.T) {
	svc, _, _ := newTestInvitations()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	advance(svc, base, 0)
	stale, _ := svc.Create("old@b.com", "x", models.InvitationTypeUser, "", adminID)
	advance(svc, base, 6*24*time.Hour)
	fresh, _ := svc.Create("new@b.com", "x", models.InvitationTypeUser, "", adminID)

	advance(svc, base, 8*24*time.Hour)
	invites, err := svc.ListByInviter(adminID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	byID := make(map[uint]string, len(invites))
	for _, inv := range invites {
		byID[inv.ID] = inv.Status
	}
	if byID[stale.ID] != models.InvitationStatusExpired {
		t.Fatalf("stale invitation status = %s, want expired", byID[stale.ID])
	}
	if byID[fresh.ID] != models.InvitationStatusPending {
		t.Fatalf("fresh invitation status = %s, want pending", byID[fresh.ID])
	}
}
