// Package repository is the data-access boundary of the booking backend.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/chachabrian/hilot-backend/internal/models"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when a unique constraint rejects a write.
var ErrDuplicate = errors.New("duplicate record")

// MaxEvents caps a single event-log read.
const MaxEvents = 100

// Repository is implemented by the postgres store and the in-memory double.
type Repository interface {
	// Transaction runs fn against a transactional view. An error from fn rolls
	// back every write made through that view.
	Transaction(ctx context.Context, fn func(tx Repository) error) error

	FindUserByID(ctx context.Context, id uint) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, u *models.User) error
	SaveUser(ctx context.Context, u *models.User) error
	// FindOrCreateUserByEmail returns the user owning u.Email, inserting u when
	// there is none.
	FindOrCreateUserByEmail(ctx context.Context, u *models.User) (*models.User, error)

	FindServiceByID(ctx context.Context, id uint) (*models.Service, error)
	// FindOrCreateService reuses an identical service row before inserting one.
	FindOrCreateService(ctx context.Context, s *models.Service) (*models.Service, error)
	ListServices(ctx context.Context) ([]models.Service, error)

	FindTherapistByID(ctx context.Context, id uint) (*models.Therapist, error)
	FindTherapistByUserID(ctx context.Context, userID uint) (*models.Therapist, error)
	CreateTherapist(ctx context.Context, t *models.Therapist) error
	SaveTherapist(ctx context.Context, t *models.Therapist) error
	ListTherapistsByStatus(ctx context.Context, status models.TherapistStatus) ([]models.Therapist, error)

	CreateBooking(ctx context.Context, b *models.Booking) error
	FindBookingByID(ctx context.Context, id uint) (*models.Booking, error)
	FindBookingByIdempotencyKey(ctx context.Context, key string) (*models.Booking, error)
	FindBookingByPaymentIntent(ctx context.Context, intentID string) (*models.Booking, error)
	UpdateBooking(ctx context.Context, id uint, patch models.BookingPatch) error
	// CancelBooking sets status cancelled and payment failed only while the
	// row is in one of the from statuses. It reports whether the row changed.
	CancelBooking(ctx context.Context, id uint, from []models.BookingStatus) (bool, error)
	ListBookingsByClient(ctx context.Context, clientID uint) ([]models.Booking, error)
	ListActiveBookings(ctx context.Context) ([]models.ActiveBooking, error)

	CreateOTP(ctx context.Context, o *models.OTP) error
	SaveOTP(ctx context.Context, o *models.OTP) error
	// InvalidateOTPs burns every unused code of otpType issued to the user.
	InvalidateOTPs(ctx context.Context, userID uint, otpType models.OTPType) error
	// FindActiveOTP returns the newest unused code that has not expired at now.
	FindActiveOTP(ctx context.Context, userID uint, otpType models.OTPType, now time.Time) (*models.OTP, error)

	AppendEvent(ctx context.Context, e *models.BookingEvent) error
	// ListEvents returns the newest events first, at most limit (capped at MaxEvents).
	ListEvents(ctx context.Context, bookingID uint, limit int) ([]models.BookingEvent, error)
}

// ClampLimit applies the default and the cap of an event-log read.
func ClampLimit(limit int) int {
	if limit <= 0 || limit > MaxEvents {
		return MaxEvents
	}
	return limit
}
