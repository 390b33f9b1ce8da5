package booking

import (
	"context"
	"errors"
	"strings"

	"github.com/chachabrian/hilot-backend/internal/models"
	"github.com/chachabrian/hilot-backend/internal/payment"
	"github.com/chachabrian/hilot-backend/internal/repository"
	"github.com/sirupsen/logrus"
)

const eventChargeComplete = "charge.complete"

// unpaid lists the statuses a failed charge cancels.
var unpaid = []models.BookingStatus{models.BookingStatusPending, models.BookingStatusConfirmed}

// WebhookOutcome says what a gateway notification did.
type WebhookOutcome string

const (
	WebhookIgnored   WebhookOutcome = "ignored"
	WebhookConfirmed WebhookOutcome = "confirmed"
	WebhookFailed    WebhookOutcome = "failed"
)

// HandlePaymentEvent re-fetches a gateway event by id and settles the booking
// that owns the charge.
func (s *Service) HandlePaymentEvent(ctx context.Context, eventID string) (WebhookOutcome, error) {
	ctx, span := s.tracer.Start(ctx, "booking.HandlePaymentEvent")
	defer span.End()

	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return WebhookIgnored, validation("event id is required")
	}

	ev, err := s.payments.VerifyEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, payment.ErrNoGateway) {
			return WebhookIgnored, validation("Payment gateway not configured")
		}
		return WebhookIgnored, &Error{Kind: KindAuth, Message: "Event could not be verified", Err: err}
	}

	entry := s.log.WithFields(logrus.Fields{
		"event_id":  ev.ID,
		"event_key": ev.Key,
		"charge_id": ev.ChargeID,
		"status":    ev.Status,
	})
	if ev.Key != eventChargeComplete || ev.ChargeID == "" {
		entry.Info("payment event ignored")
		return WebhookIgnored, nil
	}

	b, err := s.repo.FindBookingByPaymentIntent(ctx, ev.ChargeID)
	if errors.Is(err, repository.ErrNotFound) {
		entry.Warn("payment event for unknown charge")
		return WebhookIgnored, nil
	}
	if err != nil {
		return WebhookIgnored, internal("Failed to load booking", err)
	}

	switch ev.Status {
	case payment.ChargeSuccessful:
		return s.settlePaid(ctx, b, entry)
	case payment.ChargeFailed:
		return s.settleFailed(ctx, b, ev, entry)
	default:
		entry.Info("payment still pending")
		return WebhookIgnored, nil
	}
}

func (s *Service) settlePaid(ctx context.Context, b *models.Booking, entry *logrus.Entry) (WebhookOutcome, error) {
	if b.PaymentStatus == models.PaymentStatusPaid {
		return WebhookIgnored, nil
	}
	if b.Status == models.BookingStatusCancelled {
		// The booking was cancelled while the charge was pending; void it again.
		if err := s.payments.Cancel(ctx, b.PaymentIntentID); err != nil {
			entry.WithError(err).Warn("void of late charge failed")
		}
		return WebhookIgnored, nil
	}

	paid := models.PaymentStatusPaid
	patch := models.BookingPatch{PaymentStatus: &paid}
	if b.Status == models.BookingStatusPending {
		confirmed := models.BookingStatusConfirmed
		patch.Status = &confirmed
	}

	var updated *models.Booking
	err := s.repo.Transaction(ctx, func(tx repository.Repository) error {
		if err := tx.UpdateBooking(ctx, b.ID, patch); err != nil {
			return err
		}
		if err := tx.AppendEvent(ctx, &models.BookingEvent{
			BookingID: b.ID,
			Actor:     models.ActorSystem,
			Type:      models.EventPaymentConfirmed,
			CreatedAt: s.now(),
		}); err != nil {
			return err
		}
		var err error
		updated, err = tx.FindBookingByID(ctx, b.ID)
		return err
	})
	if err != nil {
		return WebhookIgnored, internal("Failed to confirm booking", err)
	}

	entry.WithField("booking_id", b.ID).Info("booking payment confirmed")
	s.publish(ctx, TopicBookingUpdated, updated)
	return WebhookConfirmed, nil
}

// settleFailed cancels a booking still waiting on its payment. A booking the
// session has already moved past keeps its status; only the payment is marked
// failed so ops can follow up.
func (s *Service) settleFailed(ctx context.Context, b *models.Booking, ev *payment.ChargeEvent, entry *logrus.Entry) (WebhookOutcome, error) {
	if b.Status == models.BookingStatusCancelled {
		return WebhookIgnored, nil
	}
	meta := map[string]interface{}{
		"reason":      "payment_failed",
		"failureCode": payment.MapFailureCode(ev.FailureCode),
	}

	updated, changed, err := s.markCancelled(ctx, b.ID, unpaid, models.ActorSystem, meta)
	if err != nil {
		return WebhookIgnored, err
	}
	if changed {
		entry.WithField("booking_id", b.ID).Info("booking cancelled after failed payment")
		s.publish(ctx, TopicBookingCancelled, updated)
		s.notify(ctx, s.notice(ctx, updated), true)
		return WebhookFailed, nil
	}
	if updated.Status == models.BookingStatusCancelled || updated.PaymentStatus == models.PaymentStatusFailed {
		return WebhookIgnored, nil
	}

	failed := models.PaymentStatusFailed
	err = s.repo.Transaction(ctx, func(tx repository.Repository) error {
		if err := tx.UpdateBooking(ctx, b.ID, models.BookingPatch{PaymentStatus: &failed}); err != nil {
			return err
		}
		if err := tx.AppendEvent(ctx, &models.BookingEvent{
			BookingID: b.ID,
			Actor:     models.ActorSystem,
			Type:      models.EventPaymentFailed,
			Meta:      jsonMeta(meta),
			CreatedAt: s.now(),
		}); err != nil {
			return err
		}
		updated, err = tx.FindBookingByID(ctx, b.ID)
		return err
	})
	if err != nil {
		return WebhookIgnored, internal("Failed to record payment failure", err)
	}

	entry.WithFields(logrus.Fields{
		"booking_id": b.ID,
		"booking":    updated.Status,
	}).Warn("payment failed after the session started")
	s.publish(ctx, TopicBookingUpdated, updated)
	return WebhookFailed, nil
}
