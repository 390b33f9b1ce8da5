package services

import (
	"context"

	"github.com/chachabrian/hilot-backend/internal/booking"
	"github.com/chachabrian/hilot-backend/pkg/utils"
)

// EmailNotifier mails booking confirmations and cancellations to the client.
type EmailNotifier struct {
	mailer *utils.Mailer
}

func NewEmailNotifier(mailer *utils.Mailer) *EmailNotifier {
	return &EmailNotifier{mailer: mailer}
}

func bookingEmail(n booking.Notice) utils.BookingEmail {
	e := utils.BookingEmail{
		BookingID:   n.Booking.ID,
		ServiceName: n.ServiceName,
		Date:        n.Booking.BookingDate,
		Time:        n.Booking.StartTime,
		Amount:      n.Booking.TotalAmount,
	}
	if n.Client != nil {
		e.ClientName = n.Client.Name
	}
	if n.Therapist != nil {
		e.TherapistName = n.Therapist.DisplayName
	}
	return e
}

func (e *EmailNotifier) BookingCreated(_ context.Context, n booking.Notice) error {
	return e.mailer.SendBookingConfirmation(n.Booking.ClientEmail, bookingEmail(n))
}

func (e *EmailNotifier) BookingCancelled(_ context.Context, n booking.Notice) error {
	return e.mailer.SendBookingCancellation(n.Booking.ClientEmail, bookingEmail(n))
}
