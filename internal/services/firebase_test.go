package services

import (
	"context"
	"testing"

	"firebase.google.com/go/v4/messaging"
	"github.com/chachabrian/hilot-backend/internal/booking"
	"github.com/chachabrian/hilot-backend/internal/logging"
	"github.com/chachabrian/hilot-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMessenger struct {
	sent []*messaging.Message
}

func (f *fakeMessenger) Send(_ context.Context, m *messaging.Message) (string, error) {
	f.sent = append(f.sent, m)
	return "projects/hilot/messages/1", nil
}

func TestPushBookingCreatedTargetsTherapist(t *testing.T) {
	fm := &fakeMessenger{}
	p := &Push{client: fm, log: logging.Discard()}

	n := booking.Notice{
		Booking:     &models.Booking{ID: 5, BookingDate: "2026-10-20", StartTime: "14:00"},
		Client:      &models.User{FCMToken: "client-token"},
		Therapist:   &models.Therapist{User: &models.User{FCMToken: "therapist-token"}},
		ServiceName: "Traditional Hilot",
	}
	require.NoError(t, p.BookingCreated(context.Background(), n))

	require.Len(t, fm.sent, 1)
	msg := fm.sent[0]
	assert.Equal(t, "therapist-token", msg.Token)
	assert.Equal(t, "New Booking", msg.Notification.Title)
	assert.Equal(t, "Traditional Hilot on 2026-10-20 at 14:00", msg.Notification.Body)
	assert.Equal(t, "5", msg.Data["bookingId"])
	assert.Equal(t, "booking_created", msg.Data["type"])
}

func TestPushBookingCancelledTargetsBothParties(t *testing.T) {
	fm := &fakeMessenger{}
	p := &Push{client: fm, log: logging.Discard()}

	n := booking.Notice{
		Booking:   &models.Booking{ID: 9},
		Client:    &models.User{FCMToken: "client-token"},
		Therapist: &models.Therapist{User: &models.User{}},
	}
	require.NoError(t, p.BookingCancelled(context.Background(), n))

	require.Len(t, fm.sent, 1)
	assert.Equal(t, "client-token", fm.sent[0].Token)
}

func TestStringData(t *testing.T) {
	got := stringData(map[string]interface{}{
		"s": "x",
		"n": uint(3),
		"f": 1.5,
		"m": map[string]int{"a": 1},
	})
	assert.Equal(t, map[string]string{"s": "x", "n": "3", "f": "1.5", "m": `{"a":1}`}, got)
}
