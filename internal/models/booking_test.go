package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingPatchApplyAndColumns(t *testing.T) {
	lat, lng := 14.6, 121.0
	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	status := BookingStatusInProgress
	verified := true

	patch := BookingPatch{
		Status:                 &status,
		LastTherapistLatitude:  &lat,
		LastTherapistLongitude: &lng,
		SessionStartedAt:       &now,
		BluetoothVerified:      &verified,
	}

	cols := patch.Columns()
	assert.Equal(t, map[string]interface{}{
		"status":                   BookingStatusInProgress,
		"last_therapist_latitude":  14.6,
		"last_therapist_longitude": 121.0,
		"session_started_at":       now,
		"bluetooth_verified":       true,
	}, cols)

	b := Booking{Status: BookingStatusConfirmed, PaymentStatus: PaymentStatusPaid}
	patch.Apply(&b)

	assert.Equal(t, BookingStatusInProgress, b.Status)
	assert.Equal(t, PaymentStatusPaid, b.PaymentStatus)
	require.NotNil(t, b.LastTherapistLatitude)
	assert.Equal(t, 14.6, *b.LastTherapistLatitude)
	assert.Nil(t, b.LastClientLatitude)
	assert.True(t, b.BluetoothVerified)
}

func TestBookingPatchEmpty(t *testing.T) {
	assert.True(t, BookingPatch{}.Empty())
}

func TestEventActorValid(t *testing.T) {
	for _, a := range []EventActor{ActorClient, ActorTherapist, ActorOps, ActorSystem} {
		assert.True(t, a.Valid(), a)
	}
	assert.False(t, EventActor("driver").Valid())
	assert.False(t, EventActor("").Valid())
}

func TestUserPassword(t *testing.T) {
	u := User{Email: "a@b.c"}
	assert.False(t, u.HasPassword())

	require.NoError(t, u.SetPassword("s3cret!"))
	assert.True(t, u.HasPassword())
	assert.NoError(t, u.CheckPassword("s3cret!"))
	assert.Error(t, u.CheckPassword("nope"))
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "ana@example.com", NormalizeEmail("  Ana@Example.COM "))
}
