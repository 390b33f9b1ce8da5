package services

import (
	"context"

	"github.com/chachabrian/hilot-backend/internal/booking"
	"github.com/chachabrian/hilot-backend/pkg/utils"
)

// SMSNotifier texts the therapist about new bookings and the client about
// cancellations. Parties without a phone number are skipped.
type SMSNotifier struct {
	sender *utils.SMSSender
}

func NewSMSNotifier(sender *utils.SMSSender) *SMSNotifier {
	return &SMSNotifier{sender: sender}
}

func (s *SMSNotifier) BookingCreated(ctx context.Context, n booking.Notice) error {
	if n.Therapist == nil || n.Therapist.User == nil || n.Therapist.User.Phone == "" {
		return nil
	}
	return s.sender.SendNewBookingToTherapist(ctx, n.Therapist.User.Phone, bookingEmail(n))
}

func (s *SMSNotifier) BookingCancelled(ctx context.Context, n booking.Notice) error {
	if n.Client == nil || n.Client.Phone == "" {
		return nil
	}
	return s.sender.SendBookingCancelled(ctx, n.Client.Phone, bookingEmail(n))
}
