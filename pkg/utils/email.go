package utils

import (
	"errors"
	"fmt"
	"net/smtp"
	"strings"
)

var ErrEmailNotConfigured = errors.New("email configuration not set")

const companyName = "Hilot"

// Common header template for all emails
const emailHeader = `
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; margin: 0; padding: 0;">
	<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
		<div style="text-align: center; margin-bottom: 30px; background-color: #f9f9f9; padding: 20px;">
			<h2 style="color: #2E7D32; margin: 0;">Hilot</h2>
		</div>
`

// Common footer template for all emails
const emailFooter = `
		<div style="text-align: center; margin-top: 20px; font-size: 12px; color: #666; border-top: 1px solid #eee; padding-top: 20px;">
			<p>This is an automated message, please do not reply to this email.</p>
		</div>
	</div>
</body>
</html>
`

type EmailConfig struct {
	From     string
	Password string
	Host     string
	Port     string
	BaseURL  string
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mailer sends transactional booking emails over SMTP.
type Mailer struct {
	cfg  EmailConfig
	send sendFunc
}

func NewMailer(cfg EmailConfig) *Mailer {
	return &Mailer{cfg: cfg, send: smtp.SendMail}
}

func (m *Mailer) Configured() bool {
	return m.cfg.From != "" && m.cfg.Password != "" && m.cfg.Host != "" && m.cfg.Port != ""
}

// BookingEmail is the data rendered into booking emails.
type BookingEmail struct {
	BookingID     uint
	ClientName    string
	ServiceName   string
	TherapistName string
	Date          string
	Time          string
	Amount        float64
}

func (m *Mailer) sendEmail(to []string, subject, body string) error {
	if !m.Configured() {
		return ErrEmailNotConfigured
	}

	headers := [][2]string{
		{"From", fmt.Sprintf("%s <%s>", companyName, m.cfg.From)},
		{"To", strings.Join(to, ",")},
		{"Subject", subject},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/html; charset=UTF-8"},
	}

	var message strings.Builder
	for _, h := range headers {
		fmt.Fprintf(&message, "%s: %s\r\n", h[0], h[1])
	}
	message.WriteString("\r\n" + body)

	auth := smtp.PlainAuth("", m.cfg.From, m.cfg.Password, m.cfg.Host)
	if err := m.send(m.cfg.Host+":"+m.cfg.Port, auth, m.cfg.From, to, []byte(message.String())); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func greeting(name string) string {
	if name == "" {
		return "Hello,"
	}
	return fmt.Sprintf("Hello %s,", name)
}

func (m *Mailer) SendBookingConfirmation(to string, b BookingEmail) error {
	subject := fmt.Sprintf("Booking #%d Confirmed - Hilot", b.BookingID)
	body := fmt.Sprintf(emailHeader+`
				<div style="background-color: #f9f9f9; padding: 20px; border-radius: 5px;">
					<h1 style="color: #2c3e50; text-align: center;">Booking Confirmed</h1>
					<p>%s</p>
					<p>Your <strong>%s</strong> session with <strong>%s</strong> is booked for <strong>%s at %s</strong>.</p>
					<p>Amount charged: <strong>%.2f</strong></p>
					<div style="text-align: center; margin: 30px 0;">
						<a href="%s/bookings/%d" style="background-color: #2E7D32; color: white; padding: 12px 25px; text-decoration: none; border-radius: 5px;">Track Your Booking</a>
					</div>
					<p>Best regards,<br>The Hilot Team</p>
				</div>`+emailFooter,
		greeting(b.ClientName), b.ServiceName, b.TherapistName, b.Date, b.Time, b.Amount, m.cfg.BaseURL, b.BookingID)

	return m.sendEmail([]string{to}, subject, body)
}

func (m *Mailer) SendBookingCancellation(to string, b BookingEmail) error {
	subject := fmt.Sprintf("Booking #%d Cancelled - Hilot", b.BookingID)
	body := fmt.Sprintf(emailHeader+`
				<div style="background-color: #f9f9f9; padding: 20px; border-radius: 5px;">
					<h1 style="color: #2c3e50; text-align: center;">Booking Cancelled</h1>
					<p>%s</p>
					<p>Your booking on <strong>%s at %s</strong> has been cancelled. Any pending charge has been released.</p>
					<div style="text-align: center; margin: 30px 0;">
						<a href="%s/services" style="background-color: #2E7D32; color: white; padding: 12px 25px; text-decoration: none; border-radius: 5px;">Book Again</a>
					</div>
					<p>Best regards,<br>The Hilot Team</p>
				</div>`+emailFooter,
		greeting(b.ClientName), b.Date, b.Time, m.cfg.BaseURL)

	return m.sendEmail([]string{to}, subject, body)
}

// SendEmailVerificationOTP mails the code that proves ownership of a guest
// account's email.
func (m *Mailer) SendEmailVerificationOTP(to, name, code string) error {
	subject := "Verify your email - Hilot"
	body := fmt.Sprintf(emailHeader+`
				<div style="background-color: #f9f9f9; padding: 20px; border-radius: 5px;">
					<h1 style="color: #2c3e50; text-align: center;">Email Verification</h1>
					<p>%s</p>
					<p>Use this code to finish creating your Hilot account:</p>
					<div style="text-align: center; margin: 30px 0;">
						<span style="font-size: 32px; letter-spacing: 8px; font-weight: bold; color: #2E7D32;">%s</span>
					</div>
					<p>The code expires in %d minutes. If you did not request it, you can ignore this email.</p>
					<p>Best regards,<br>The Hilot Team</p>
				</div>`+emailFooter,
		greeting(name), code, int(OTPExpiration.Minutes()))

	return m.sendEmail([]string{to}, subject, body)
}
