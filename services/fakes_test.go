package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"onlyifyouknow-server/models"

	"gorm.io/datatypes"
)

// In-memory stores with the same conditional-update semantics as the gorm
// implementations in storage.

type fakePropertyStore struct {
	mu    sync.Mutex
	props map[uint]*models.Property
	// when set, every call fails with this error (simulated store outage)
	err error
}

func newFakePropertyStore(props ...*models.Property) *fakePropertyStore {
	s := &fakePropertyStore{props: make(map[uint]*models.Property)}
	for _, p := range props {
		cp := *p
		s.props[p.ID] = &cp
	}
	return s
}

func (s *fakePropertyStore) GetProperty(id uint) (*models.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	p, ok := s.props[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (s *fakePropertyStore) TransitionProperty(id uint, fromStatus string, fields map[string]interface{}) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	p, ok := s.props[id]
	if !ok || p.Status != fromStatus {
		return false, nil
	}
	applyPropertyFields(p, fields)
	return true, nil
}

func (s *fakePropertyStore) ClaimForSync(id uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	p, ok := s.props[id]
	if !ok || p.Status != models.PropertyStatusApprovedPendingProvider || p.SyncStatus == models.SyncStatusSyncing {
		return false, nil
	}
	p.SyncStatus = models.SyncStatusSyncing
	return true, nil
}

func (s *fakePropertyStore) ReleaseSync(id uint, syncErr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	p, ok := s.props[id]
	if !ok || p.SyncStatus != models.SyncStatusSyncing {
		return nil
	}
	p.SyncStatus = models.SyncStatusError
	p.SyncError = syncErr
	return nil
}

func (s *fakePropertyStore) ListPropertiesByStatus(status string) ([]models.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	var out []models.Property
	for _, p := range s.props {
		if p.Status == status {
			out = append(out, *p)
		}
	}
	// oldest approval first
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			a, b := out[i].ApprovedAt, out[j].ApprovedAt
			if a != nil && b != nil && b.Before(*a) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

// snapshot returns a copy of the stored row for assertions.
func (s *fakePropertyStore) snapshot(id uint) models.Property {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.props[id]
}

func applyPropertyFields(p *models.Property, fields map[string]interface{}) {
	for k, v := range fields {
		switch k {
		case "status":
			p.Status = v.(string)
		case "review_notes":
			p.ReviewNotes = v.(string)
		case "submitted_at":
			p.SubmittedAt = v.(*time.Time)
		case "approved_at":
			p.ApprovedAt = v.(*time.Time)
		case "beds24_property_id":
			p.Beds24PropertyID = v.(*string)
		case "sync_status":
			p.SyncStatus = v.(string)
		case "sync_error":
			p.SyncError = v.(string)
		case "sync_metadata":
			p.SyncMetadata = v.(datatypes.JSON)
		case "enlisted_at":
			p.EnlistedAt = v.(*time.Time)
		default:
			panic("unknown property field: " + k)
		}
	}
}

type fakeUserStore struct {
	users map[uint]*models.User
	// when set, CreateUser fails with this error (simulated store outage)
	createErr error
}

func newFakeUserStore(users ...*models.User) *fakeUserStore {
	s := &fakeUserStore{users: make(map[uint]*models.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *fakeUserStore) GetUser(id uint) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return u, nil
}

func (s *fakeUserStore) GetUserByEmail(email string) (*models.User, error) {
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, nil
}

// CreateUser enforces the email unique index the real store has.
func (s *fakeUserStore) CreateUser(user *models.User) error {
	if s.createErr != nil {
		return s.createErr
	}
	for _, u := range s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return fmt.Errorf("duplicate key value violates unique constraint on email %q", user.Email)
		}
	}
	var maxID uint
	for id := range s.users {
		if id > maxID {
			maxID = id
		}
	}
	user.ID = maxID + 1
	s.users[user.ID] = user
	return nil
}

type fakeAuditStore struct {
	mu      sync.Mutex
	entries []models.AuditLog
}

func (s *fakeAuditStore) CreateAuditLog(entry *models.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, *entry)
	return nil
}

func (s *fakeAuditStore) actions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.Action
	}
	return out
}

type fakeProvider struct {
	mu    sync.Mutex
	calls int
	err   error
	delay time.Duration
}

func (p *fakeProvider) CreateListing(ctx context.Context, prop *models.Property) (*ProviderListing, error) {
	p.mu.Lock()
	p.calls++
	n := p.calls
	err := p.err
	delay := p.delay
	p.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if err != nil {
		return nil, err
	}
	return &ProviderListing{PropID: fmt.Sprintf("ext-%d", n), RoomID: "room-1"}, nil
}

func (p *fakeProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

type fakeInvitationStore struct {
	mu      sync.Mutex
	nextID  uint
	invites map[uint]*models.Invitation
}

func newFakeInvitationStore() *fakeInvitationStore {
	return &fakeInvitationStore{invites: make(map[uint]*models.Invitation)}
}

func (s *fakeInvitationStore) CreateInvitation(inv *models.Invitation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	inv.ID = s.nextID
	cp := *inv
	s.invites[inv.ID] = &cp
	return nil
}

func (s *fakeInvitationStore) GetInvitationByToken(token string) (*models.Invitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, inv := range s.invites {
		if inv.Token != nil && *inv.Token == token {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *fakeInvitationStore) GetInvitation(id uint) (*models.Invitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invites[id]
	if !ok {
		return nil, nil
	}
	cp := *inv
	return &cp, nil
}

func (s *fakeInvitationStore) UpdateInvitationStatus(id uint, fromStatus string, fields map[string]interface{}) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invites[id]
	if !ok || inv.Status != fromStatus {
		return false, nil
	}
	for k, v := range fields {
		switch k {
		case "status":
			inv.Status = v.(string)
		case "responded_at":
			inv.RespondedAt = v.(*time.Time)
		default:
			panic("unknown invitation field: " + k)
		}
	}
	return true, nil
}

func (s *fakeInvitationStore) ListInvitationsByInviter(inviterID uint) ([]models.Invitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Invitation
	for _, inv := range s.invites {
		if inv.InviterID == inviterID {
			out = append(out, *inv)
		}
	}
	return out, nil
}

type fakeBookingStore struct {
	bookings []models.Booking
}

// Same half-open overlap window as the gorm count query.
func (s *fakeBookingStore) CountOverlappingBookings(propertyID uint, checkIn, checkOut time.Time) (int64, error) {
	var n int64
	for _, b := range s.bookings {
		if b.PropertyID == propertyID && b.Status == models.BookingStatusConfirmed &&
			b.CheckIn.Before(checkOut) && b.CheckOut.After(checkIn) {
			n++
		}
	}
	return n, nil
}

type fakeTrustStore struct {
	discounts map[[2]uint]float32
}

func (s *fakeTrustStore) GetTrustDiscount(ownerID, guestID uint) (float32, error) {
	return s.discounts[[2]uint{ownerID, guestID}], nil
}
