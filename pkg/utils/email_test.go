package utils

import (
	"net/smtp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMailerNotConfigured(t *testing.T) {
	m := NewMailer(EmailConfig{})
	assert.False(t, m.Configured())
	assert.ErrorIs(t, m.SendBookingConfirmation("ana@example.com", BookingEmail{}), ErrEmailNotConfigured)
}

func TestSendBookingConfirmation(t *testing.T) {
	m := NewMailer(EmailConfig{From: "noreply@hilot.test", Password: "pw", Host: "smtp.hilot.test", Port: "587", BaseURL: "https://hilot.test"})

	var gotAddr string
	var gotTo []string
	var gotMsg string
	m.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotTo, gotMsg = addr, to, string(msg)
		return nil
	}

	err := m.SendBookingConfirmation("ana@example.com", BookingEmail{
		BookingID:     5,
		ClientName:    "Ana",
		ServiceName:   "Traditional Hilot",
		TherapistName: "Maria S.",
		Date:          "2026-10-20",
		Time:          "14:00",
		Amount:        1474,
	})
	require.NoError(t, err)

	assert.Equal(t, "smtp.hilot.test:587", gotAddr)
	assert.Equal(t, []string{"ana@example.com"}, gotTo)
	assert.True(t, strings.HasPrefix(gotMsg, "From: Hilot <noreply@hilot.test>\r\n"))
	assert.Contains(t, gotMsg, "Subject: Booking #5 Confirmed - Hilot\r\n")
	assert.Contains(t, gotMsg, "Hello Ana,")
	assert.Contains(t, gotMsg, "1474.00")
	assert.Contains(t, gotMsg, "https://hilot.test/bookings/5")
}

func TestSendEmailVerificationOTP(t *testing.T) {
	m := NewMailer(EmailConfig{From: "noreply@hilot.test", Password: "pw", Host: "smtp.hilot.test", Port: "587"})

	var gotMsg string
	m.send = func(_ string, _ smtp.Auth, _ string, _ []string, msg []byte) error {
		gotMsg = string(msg)
		return nil
	}

	require.NoError(t, m.SendEmailVerificationOTP("ana@example.com", "", "042917"))
	assert.Contains(t, gotMsg, "Subject: Verify your email - Hilot\r\n")
	assert.Contains(t, gotMsg, "Hello,")
	assert.Contains(t, gotMsg, "042917")
	assert.Contains(t, gotMsg, "15 minutes")
}
