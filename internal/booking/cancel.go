package booking

import (
	"context"
	"errors"

	"github.com/chachabrian/hilot-backend/internal/models"
	"github.com/chachabrian/hilot-backend/internal/repository"
	"github.com/sirupsen/logrus"
)

// cancellable lists every status a client or ops cancel may leave.
var cancellable = []models.BookingStatus{
	models.BookingStatusPending,
	models.BookingStatusConfirmed,
	models.BookingStatusInProgress,
	models.BookingStatusCompleted,
}

type CancelResult struct {
	Booking          *models.Booking
	AlreadyCancelled bool
}

// Cancel moves a booking to cancelled and its payment to failed. The upstream
// payment is voided on a best-effort basis once the local change has
// committed. Cancelling twice is a no-op.
func (s *Service) Cancel(ctx context.Context, bookingID uint) (*CancelResult, error) {
	ctx, span := s.tracer.Start(ctx, "booking.Cancel")
	defer span.End()

	b, err := s.Booking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status == models.BookingStatusCancelled {
		return &CancelResult{Booking: b, AlreadyCancelled: true}, nil
	}

	updated, changed, err := s.markCancelled(ctx, b.ID, cancellable, models.ActorSystem, nil)
	if err != nil {
		return nil, err
	}
	if !changed {
		// A concurrent cancel won the conditional update.
		return &CancelResult{Booking: updated, AlreadyCancelled: true}, nil
	}

	if err := s.payments.Cancel(ctx, updated.PaymentIntentID); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"booking_id": updated.ID,
			"intent_id":  updated.PaymentIntentID,
		}).Warn("upstream payment cancel failed")
	}

	s.log.WithField("booking_id", updated.ID).Info("booking cancelled")
	s.publish(ctx, TopicBookingCancelled, updated)
	s.notify(ctx, s.notice(ctx, updated), true)

	return &CancelResult{Booking: updated}, nil
}

// markCancelled cancels the booking if it is still in one of the from
// statuses and records the cancelled event in the same transaction. When the
// row was in any other status nothing is written and changed is false. The
// fresh row is returned either way.
func (s *Service) markCancelled(ctx context.Context, bookingID uint, from []models.BookingStatus, actor models.EventActor, meta map[string]interface{}) (*models.Booking, bool, error) {
	var (
		updated *models.Booking
		changed bool
	)
	err := s.repo.Transaction(ctx, func(tx repository.Repository) error {
		var err error
		changed, err = tx.CancelBooking(ctx, bookingID, from)
		if err != nil {
			return err
		}
		if changed {
			if err := tx.AppendEvent(ctx, &models.BookingEvent{
				BookingID: bookingID,
				Actor:     actor,
				Type:      models.EventCancelled,
				Meta:      jsonMeta(meta),
				CreatedAt: s.now(),
			}); err != nil {
				return err
			}
		}
		updated, err = tx.FindBookingByID(ctx, bookingID)
		return err
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, false, notFound("Booking not found")
		}
		return nil, false, internal("Failed to cancel booking", err)
	}
	return updated, changed, nil
}
