package services

import (
	"context"
	"encoding/json"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/chachabrian/hilot-backend/internal/booking"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// Messenger is the slice of the FCM client used for pushes.
type Messenger interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// Push sends booking notifications through Firebase Cloud Messaging.
type Push struct {
	client Messenger
	log    *logrus.Logger
}

// NewPush initializes the Firebase Admin SDK from a service account file. An
// empty path disables push notifications and returns nil.
func NewPush(ctx context.Context, serviceAccountPath string, log *logrus.Logger) (*Push, error) {
	if serviceAccountPath == "" {
		log.Warn("FIREBASE_SERVICE_ACCOUNT_PATH not set, push notifications disabled")
		return nil, nil
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(serviceAccountPath))
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting messaging client: %w", err)
	}

	log.Info("Firebase Cloud Messaging initialized")
	return &Push{client: client, log: log}, nil
}

// NotificationPayload represents the notification data
type NotificationPayload struct {
	Title string
	Body  string
	Data  map[string]interface{}
	Tag   string
}

// getAndroidConfig returns Android-specific notification configuration
func getAndroidConfig(payload NotificationPayload) *messaging.AndroidConfig {
	return &messaging.AndroidConfig{
		Priority: "high",
		Notification: &messaging.AndroidNotification{
			Sound:                 "default",
			ChannelID:             "hilot_bookings",
			Priority:              messaging.PriorityHigh,
			DefaultSound:          true,
			Icon:                  "ic_stat_logo",
			Color:                 "#2E7D32",
			Tag:                   payload.Tag,
			DefaultVibrateTimings: true,
		},
	}
}

// getAPNSConfig returns iOS-specific notification configuration
func getAPNSConfig() *messaging.APNSConfig {
	badge := 1
	return &messaging.APNSConfig{
		Payload: &messaging.APNSPayload{
			Aps: &messaging.Aps{
				Sound:            "default",
				Badge:            &badge,
				MutableContent:   true,
				ContentAvailable: true,
			},
		},
	}
}

// stringData converts a data map to the string map FCM requires.
func stringData(data map[string]interface{}) map[string]string {
	out := make(map[string]string, len(data))
	for key, value := range data {
		switch v := value.(type) {
		case string:
			out[key] = v
		case int, int64, uint, float64, bool:
			out[key] = fmt.Sprintf("%v", v)
		default:
			raw, err := json.Marshal(v)
			if err != nil {
				continue
			}
			out[key] = string(raw)
		}
	}
	return out
}

func buildMessage(token string, payload NotificationPayload) *messaging.Message {
	return &messaging.Message{
		Notification: &messaging.Notification{
			Title: payload.Title,
			Body:  payload.Body,
		},
		Data:    stringData(payload.Data),
		Token:   token,
		Android: getAndroidConfig(payload),
		APNS:    getAPNSConfig(),
	}
}

// SendToToken sends a notification to a specific FCM token. An empty token is
// skipped.
func (p *Push) SendToToken(ctx context.Context, token string, payload NotificationPayload) error {
	if token == "" {
		return nil
	}
	response, err := p.client.Send(ctx, buildMessage(token, payload))
	if err != nil {
		return fmt.Errorf("error sending message: %w", err)
	}
	p.log.WithField("response", response).Debug("push notification sent")
	return nil
}

// BookingCreated tells the therapist about a new booking.
func (p *Push) BookingCreated(ctx context.Context, n booking.Notice) error {
	if n.Therapist == nil || n.Therapist.User == nil {
		return nil
	}
	b := n.Booking
	return p.SendToToken(ctx, n.Therapist.User.FCMToken, NotificationPayload{
		Title: "New Booking",
		Body:  fmt.Sprintf("%s on %s at %s", n.ServiceName, b.BookingDate, b.StartTime),
		Tag:   fmt.Sprintf("booking_%d", b.ID),
		Data: map[string]interface{}{
			"type":           "booking_created",
			"bookingId":      b.ID,
			"notificationId": fmt.Sprintf("booking_created_%d", b.ID),
		},
	})
}

// BookingCancelled tells both parties a booking was cancelled.
func (p *Push) BookingCancelled(ctx context.Context, n booking.Notice) error {
	b := n.Booking
	payload := NotificationPayload{
		Title: "Booking Cancelled",
		Body:  fmt.Sprintf("Your booking on %s at %s was cancelled", b.BookingDate, b.StartTime),
		Tag:   fmt.Sprintf("booking_%d", b.ID),
		Data: map[string]interface{}{
			"type":           "booking_cancelled",
			"bookingId":      b.ID,
			"notificationId": fmt.Sprintf("booking_cancelled_%d", b.ID),
		},
	}

	if n.Client != nil {
		if err := p.SendToToken(ctx, n.Client.FCMToken, payload); err != nil {
			return err
		}
	}
	if n.Therapist != nil && n.Therapist.User != nil {
		return p.SendToToken(ctx, n.Therapist.User.FCMToken, payload)
	}
	return nil
}
