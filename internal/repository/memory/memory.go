// Package memory is an in-process Repository used as a test double.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/chachabrian/hilot-backend/internal/models"
	"github.com/chachabrian/hilot-backend/internal/repository"
)

type state struct {
	users      map[uint]models.User
	services   map[uint]models.Service
	therapists map[uint]models.Therapist
	bookings   map[uint]models.Booking
	events     []models.BookingEvent
	otps       map[uint]models.OTP
	nextID     uint
}

func (s *state) clone() *state {
	c := &state{
		users:      make(map[uint]models.User, len(s.users)),
		services:   make(map[uint]models.Service, len(s.services)),
		therapists: make(map[uint]models.Therapist, len(s.therapists)),
		bookings:   make(map[uint]models.Booking, len(s.bookings)),
		events:     append([]models.BookingEvent(nil), s.events...),
		otps:       make(map[uint]models.OTP, len(s.otps)),
		nextID:     s.nextID,
	}
	for k, v := range s.otps {
		c.otps[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.services {
		c.services[k] = v
	}
	for k, v := range s.therapists {
		c.therapists[k] = v
	}
	for k, v := range s.bookings {
		c.bookings[k] = v
	}
	return c
}

// Store keeps everything in maps guarded by one mutex.
type Store struct {
	mu  *sync.Mutex
	st  *state
	now func() time.Time

	inTx bool

	// FailAppendEvent makes AppendEvent fail, to exercise rollbacks.
	FailAppendEvent error
	// FailCreateBooking makes CreateBooking fail.
	FailCreateBooking error
}

func New() *Store {
	return &Store{
		mu: &sync.Mutex{},
		st: &state{
			users:      map[uint]models.User{},
			services:   map[uint]models.Service{},
			therapists: map[uint]models.Therapist{},
			bookings:   map[uint]models.Booking{},
			otps:       map[uint]models.OTP{},
		},
		now: time.Now,
	}
}

// SetClock overrides the timestamp source for created rows.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) id() uint {
	s.st.nextID++
	return s.st.nextID
}

// Transaction snapshots the state and restores it if fn fails.
func (s *Store) Transaction(ctx context.Context, fn func(tx repository.Repository) error) error {
	if s.inTx {
		return fn(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	tx := &Store{
		mu:                s.mu,
		st:                s.st,
		now:               s.now,
		inTx:              true,
		FailAppendEvent:   s.FailAppendEvent,
		FailCreateBooking: s.FailCreateBooking,
	}
	if err := fn(tx); err != nil {
		*s.st = *snapshot
		return err
	}
	return nil
}

func (s *Store) FindUserByID(_ context.Context, id uint) (*models.User, error) {
	defer s.lock()()
	u, ok := s.st.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (s *Store) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	defer s.lock()()
	return s.userByEmail(email)
}

func (s *Store) userByEmail(email string) (*models.User, error) {
	email = models.NormalizeEmail(email)
	for _, u := range s.st.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) CreateUser(_ context.Context, u *models.User) error {
	defer s.lock()()
	u.Email = models.NormalizeEmail(u.Email)
	if _, err := s.userByEmail(u.Email); err == nil {
		return repository.ErrDuplicate
	}
	u.ID = s.id()
	u.CreatedAt = s.now()
	u.UpdatedAt = u.CreatedAt
	if u.Role == "" {
		u.Role = models.RoleClient
	}
	s.st.users[u.ID] = *u
	return nil
}

func (s *Store) SaveUser(_ context.Context, u *models.User) error {
	defer s.lock()()
	if _, ok := s.st.users[u.ID]; !ok {
		return repository.ErrNotFound
	}
	u.UpdatedAt = s.now()
	s.st.users[u.ID] = *u
	return nil
}

func (s *Store) FindOrCreateUserByEmail(ctx context.Context, u *models.User) (*models.User, error) {
	if existing, err := s.FindUserByEmail(ctx, u.Email); err == nil {
		return existing, nil
	}
	if err := s.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	out := *u
	return &out, nil
}

func (s *Store) FindServiceByID(_ context.Context, id uint) (*models.Service, error) {
	defer s.lock()()
	svc, ok := s.st.services[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &svc, nil
}

func (s *Store) FindOrCreateService(_ context.Context, svc *models.Service) (*models.Service, error) {
	defer s.lock()()
	for _, id := range s.sortedServiceIDs() {
		existing := s.st.services[id]
		if strings.EqualFold(existing.Name, svc.Name) && existing.Category == svc.Category &&
			existing.BasePrice == svc.BasePrice && existing.Duration == svc.Duration {
			return &existing, nil
		}
	}
	svc.ID = s.id()
	svc.CreatedAt = s.now()
	svc.UpdatedAt = svc.CreatedAt
	s.st.services[svc.ID] = *svc
	out := *svc
	return &out, nil
}

func (s *Store) sortedServiceIDs() []uint {
	ids := make([]uint, 0, len(s.st.services))
	for id := range s.st.services {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (s *Store) ListServices(_ context.Context) ([]models.Service, error) {
	defer s.lock()()
	out := make([]models.Service, 0, len(s.st.services))
	for _, id := range s.sortedServiceIDs() {
		out = append(out, s.st.services[id])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *Store) FindTherapistByID(_ context.Context, id uint) (*models.Therapist, error) {
	defer s.lock()()
	t, ok := s.st.therapists[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if u, ok := s.st.users[t.UserID]; ok {
		t.User = &u
	}
	return &t, nil
}

func (s *Store) FindTherapistByUserID(_ context.Context, userID uint) (*models.Therapist, error) {
	defer s.lock()()
	for _, t := range s.st.therapists {
		if t.UserID == userID {
			return &t, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) CreateTherapist(_ context.Context, t *models.Therapist) error {
	defer s.lock()()
	for _, existing := range s.st.therapists {
		if existing.UserID == t.UserID {
			return repository.ErrDuplicate
		}
	}
	t.ID = s.id()
	t.CreatedAt = s.now()
	t.UpdatedAt = t.CreatedAt
	if t.Status == "" {
		t.Status = models.TherapistPending
	}
	stored := *t
	stored.User = nil
	s.st.therapists[t.ID] = stored
	return nil
}

func (s *Store) SaveTherapist(_ context.Context, t *models.Therapist) error {
	defer s.lock()()
	if _, ok := s.st.therapists[t.ID]; !ok {
		return repository.ErrNotFound
	}
	t.UpdatedAt = s.now()
	stored := *t
	stored.User = nil
	s.st.therapists[t.ID] = stored
	return nil
}

func (s *Store) ListTherapistsByStatus(_ context.Context, status models.TherapistStatus) ([]models.Therapist, error) {
	defer s.lock()()
	var out []models.Therapist
	for _, t := range s.st.therapists {
		if t.Status == status {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) CreateBooking(_ context.Context, b *models.Booking) error {
	defer s.lock()()
	if s.FailCreateBooking != nil {
		return s.FailCreateBooking
	}
	if b.IdempotencyKey != nil {
		for _, existing := range s.st.bookings {
			if existing.IdempotencyKey != nil && *existing.IdempotencyKey == *b.IdempotencyKey {
				return repository.ErrDuplicate
			}
		}
	}
	b.ID = s.id()
	b.CreatedAt = s.now()
	b.UpdatedAt = b.CreatedAt
	stored := *b
	stored.Client, stored.Therapist, stored.Service = nil, nil, nil
	s.st.bookings[b.ID] = stored
	return nil
}

func (s *Store) FindBookingByID(_ context.Context, id uint) (*models.Booking, error) {
	defer s.lock()()
	b, ok := s.st.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &b, nil
}

func (s *Store) FindBookingByIdempotencyKey(_ context.Context, key string) (*models.Booking, error) {
	defer s.lock()()
	for _, b := range s.st.bookings {
		if b.IdempotencyKey != nil && *b.IdempotencyKey == key {
			return &b, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) FindBookingByPaymentIntent(_ context.Context, intentID string) (*models.Booking, error) {
	defer s.lock()()
	for _, b := range s.st.bookings {
		if b.PaymentIntentID == intentID {
			return &b, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) UpdateBooking(_ context.Context, id uint, patch models.BookingPatch) error {
	defer s.lock()()
	if patch.Empty() {
		return nil
	}
	b, ok := s.st.bookings[id]
	if !ok {
		return repository.ErrNotFound
	}
	patch.Apply(&b)
	b.UpdatedAt = s.now()
	s.st.bookings[id] = b
	return nil
}

func (s *Store) CancelBooking(_ context.Context, id uint, from []models.BookingStatus) (bool, error) {
	defer s.lock()()
	b, ok := s.st.bookings[id]
	if !ok {
		return false, repository.ErrNotFound
	}
	for _, st := range from {
		if b.Status == st {
			b.Status = models.BookingStatusCancelled
			b.PaymentStatus = models.PaymentStatusFailed
			b.UpdatedAt = s.now()
			s.st.bookings[id] = b
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) CreateOTP(_ context.Context, o *models.OTP) error {
	defer s.lock()()
	o.ID = s.id()
	o.CreatedAt = s.now()
	o.UpdatedAt = o.CreatedAt
	s.st.otps[o.ID] = *o
	return nil
}

func (s *Store) SaveOTP(_ context.Context, o *models.OTP) error {
	defer s.lock()()
	if _, ok := s.st.otps[o.ID]; !ok {
		return repository.ErrNotFound
	}
	o.UpdatedAt = s.now()
	s.st.otps[o.ID] = *o
	return nil
}

func (s *Store) InvalidateOTPs(_ context.Context, userID uint, otpType models.OTPType) error {
	defer s.lock()()
	for id, o := range s.st.otps {
		if o.UserID == userID && o.Type == otpType && !o.Used {
			o.Used = true
			s.st.otps[id] = o
		}
	}
	return nil
}

func (s *Store) FindActiveOTP(_ context.Context, userID uint, otpType models.OTPType, now time.Time) (*models.OTP, error) {
	defer s.lock()()
	var found *models.OTP
	for _, o := range s.st.otps {
		if o.UserID != userID || o.Type != otpType || !o.IsValid(now) {
			continue
		}
		if found == nil || o.ID > found.ID {
			o := o
			found = &o
		}
	}
	if found == nil {
		return nil, repository.ErrNotFound
	}
	return found, nil
}

func (s *Store) ListBookingsByClient(_ context.Context, clientID uint) ([]models.Booking, error) {
	defer s.lock()()
	var out []models.Booking
	for _, b := range s.st.bookings {
		if b.ClientID != nil && *b.ClientID == clientID {
			if svc, ok := s.st.services[b.ServiceID]; ok {
				b.Service = &svc
			}
			if t, ok := s.st.therapists[b.TherapistID]; ok {
				b.Therapist = &t
			}
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *Store) ListActiveBookings(_ context.Context) ([]models.ActiveBooking, error) {
	defer s.lock()()
	var out []models.ActiveBooking
	for _, b := range s.st.bookings {
		if b.Status != models.BookingStatusConfirmed && b.Status != models.BookingStatusInProgress {
			continue
		}
		row := models.ActiveBooking{Booking: b, ClientName: b.ClientEmail}
		if b.ClientID != nil {
			if u, ok := s.st.users[*b.ClientID]; ok && u.Name != "" {
				row.ClientName = u.Name
			}
		}
		if t, ok := s.st.therapists[b.TherapistID]; ok {
			row.TherapistName = t.DisplayName
		}
		if svc, ok := s.st.services[b.ServiceID]; ok {
			row.ServiceName = svc.Name
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].BookingDate != out[j].BookingDate {
			return out[i].BookingDate < out[j].BookingDate
		}
		if out[i].StartTime != out[j].StartTime {
			return out[i].StartTime < out[j].StartTime
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) AppendEvent(_ context.Context, e *models.BookingEvent) error {
	defer s.lock()()
	if s.FailAppendEvent != nil {
		return s.FailAppendEvent
	}
	if _, ok := s.st.bookings[e.BookingID]; !ok {
		return repository.ErrNotFound
	}
	e.ID = s.id()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}
	stored := *e
	stored.Booking = nil
	s.st.events = append(s.st.events, stored)
	return nil
}

func (s *Store) ListEvents(_ context.Context, bookingID uint, limit int) ([]models.BookingEvent, error) {
	defer s.lock()()
	var out []models.BookingEvent
	for _, e := range s.st.events {
		if e.BookingID == bookingID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if limit = repository.ClampLimit(limit); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Events returns every stored event for a booking in insertion order.
func (s *Store) Events(bookingID uint) []models.BookingEvent {
	defer s.lock()()
	var out []models.BookingEvent
	for _, e := range s.st.events {
		if e.BookingID == bookingID {
			out = append(out, e)
		}
	}
	return out
}

// BookingCount reports how many bookings exist.
func (s *Store) BookingCount() int {
	defer s.lock()()
	return len(s.st.bookings)
}

var _ repository.Repository = (*Store)(nil)
