// Package booking holds the checkout, event log, cancellation and ops logic of
// the booking backend. Handlers call into Service; Service calls the repository
// and the payment resolver and fans out to the configured sinks.
package booking

import (
	"context"
	"errors"
	"time"

	"github.com/chachabrian/hilot-backend/internal/models"
	"github.com/chachabrian/hilot-backend/internal/payment"
	"github.com/chachabrian/hilot-backend/internal/repository"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Topics published to every EventSink.
const (
	TopicBookingCreated   = "booking.created"
	TopicBookingEvent     = "booking.event"
	TopicBookingCancelled = "booking.cancelled"
	TopicBookingUpdated   = "booking.updated"
)

// EventSink receives post-commit notifications. Errors are logged only.
type EventSink interface {
	Publish(ctx context.Context, topic string, payload interface{}) error
}

// IdempotencyGuard marks a checkout key as in flight.
type IdempotencyGuard interface {
	Acquire(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// LocationCache keeps the latest position reported for a booking.
type LocationCache interface {
	SetLocation(ctx context.Context, bookingID uint, actor models.EventActor, lat, lng float64) error
}

// Notice carries what a notifier needs to address both parties.
type Notice struct {
	Booking     *models.Booking
	Client      *models.User
	Therapist   *models.Therapist
	ServiceName string
}

type Notifier interface {
	BookingCreated(ctx context.Context, n Notice) error
	BookingCancelled(ctx context.Context, n Notice) error
}

type Options struct {
	PlatformFee float64
	Sinks       []EventSink
	Guard       IdempotencyGuard
	Locations   LocationCache
	Notifiers   []Notifier
	Logger      *logrus.Logger
	Now         func() time.Time
}

type Service struct {
	repo        repository.Repository
	payments    *payment.Resolver
	platformFee float64
	sinks       []EventSink
	guard       IdempotencyGuard
	locations   LocationCache
	notifiers   []Notifier
	log         *logrus.Logger
	now         func() time.Time
	tracer      trace.Tracer
}

func NewService(repo repository.Repository, payments *payment.Resolver, opts Options) *Service {
	s := &Service{
		repo:        repo,
		payments:    payments,
		platformFee: opts.PlatformFee,
		sinks:       opts.Sinks,
		guard:       opts.Guard,
		locations:   opts.Locations,
		notifiers:   opts.Notifiers,
		log:         opts.Logger,
		now:         opts.Now,
		tracer:      otel.Tracer("github.com/chachabrian/hilot-backend/internal/booking"),
	}
	if s.log == nil {
		s.log = logrus.New()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *Service) PlatformFee() float64 {
	return s.platformFee
}

func (s *Service) publish(ctx context.Context, topic string, payload interface{}) {
	for _, sink := range s.sinks {
		if err := sink.Publish(ctx, topic, payload); err != nil {
			s.log.WithError(err).WithField("topic", topic).Warn("sink publish failed")
		}
	}
}

func (s *Service) notify(ctx context.Context, n Notice, cancelled bool) {
	for _, notifier := range s.notifiers {
		var err error
		if cancelled {
			err = notifier.BookingCancelled(ctx, n)
		} else {
			err = notifier.BookingCreated(ctx, n)
		}
		if err != nil {
			s.log.WithError(err).WithField("booking_id", n.Booking.ID).Warn("notification failed")
		}
	}
}

// notice loads the parties of a booking for notifications. Missing rows leave
// the corresponding field nil.
func (s *Service) notice(ctx context.Context, b *models.Booking) Notice {
	n := Notice{Booking: b}
	if b.ClientID != nil {
		if u, err := s.repo.FindUserByID(ctx, *b.ClientID); err == nil {
			n.Client = u
		}
	}
	if t, err := s.repo.FindTherapistByID(ctx, b.TherapistID); err == nil {
		n.Therapist = t
	}
	if svc, err := s.repo.FindServiceByID(ctx, b.ServiceID); err == nil {
		n.ServiceName = svc.Name
	}
	return n
}

// Booking returns one booking by id.
func (s *Service) Booking(ctx context.Context, id uint) (*models.Booking, error) {
	b, err := s.repo.FindBookingByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("Booking not found")
		}
		return nil, internal("Failed to load booking", err)
	}
	return b, nil
}

// ClientBookings lists the bookings owned by a user, newest first.
func (s *Service) ClientBookings(ctx context.Context, userID uint) ([]models.Booking, error) {
	bookings, err := s.repo.ListBookingsByClient(ctx, userID)
	if err != nil {
		return nil, internal("Failed to load bookings", err)
	}
	return bookings, nil
}
