package booking

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/chachabrian/hilot-backend/internal/models"
	"github.com/chachabrian/hilot-backend/internal/repository"
	"github.com/chachabrian/hilot-backend/pkg/utils"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/datatypes"
)

// MaxEventTypeLength bounds the free-form event type.
const MaxEventTypeLength = 100

type EventInput struct {
	Actor     models.EventActor `json:"actor"`
	Type      string            `json:"type"`
	Latitude  *float64          `json:"latitude"`
	Longitude *float64          `json:"longitude"`
	Meta      json.RawMessage   `json:"meta"`
}

// Projection returns the denormalized booking fields an event changes. An
// empty patch means the event is only recorded.
func Projection(e *models.BookingEvent, now time.Time) models.BookingPatch {
	var p models.BookingPatch

	switch e.Type {
	case models.EventLocation:
		if e.Latitude == nil || e.Longitude == nil {
			return p
		}
		lat, lng := *e.Latitude, *e.Longitude
		switch e.Actor {
		case models.ActorClient:
			p.LastClientLatitude, p.LastClientLongitude = &lat, &lng
		case models.ActorTherapist:
			p.LastTherapistLatitude, p.LastTherapistLongitude = &lat, &lng
		}
	case models.EventCheckIn:
		switch e.Actor {
		case models.ActorClient:
			p.ClientCheckedInAt = &now
		case models.ActorTherapist:
			p.TherapistCheckedInAt = &now
		}
	case models.EventStart:
		status := models.BookingStatusInProgress
		p.Status = &status
		p.SessionStartedAt = &now
	case models.EventComplete:
		status := models.BookingStatusCompleted
		p.Status = &status
		p.SessionCompletedAt = &now
	case models.EventBluetoothVerified:
		verified := true
		p.BluetoothVerified = &verified
	}
	return p
}

// AppendEvent records an event and applies its projection in one transaction.
func (s *Service) AppendEvent(ctx context.Context, bookingID uint, in EventInput) (*models.BookingEvent, error) {
	ctx, span := s.tracer.Start(ctx, "booking.AppendEvent")
	defer span.End()

	in.Type = strings.TrimSpace(in.Type)
	if !in.Actor.Valid() {
		return nil, validation("actor must be one of client, therapist, ops, system")
	}
	if in.Type == "" {
		return nil, validation("type is required")
	}
	if len(in.Type) > MaxEventTypeLength {
		return nil, validation("type is too long")
	}
	// A location fix needs both halves; other types keep whatever they carry
	// and never project it.
	if in.Type == models.EventLocation && (in.Latitude == nil) != (in.Longitude == nil) {
		return nil, validation("latitude and longitude must be sent together")
	}
	if in.Latitude != nil && !utils.ValidLatitude(*in.Latitude) {
		return nil, validation("latitude out of range")
	}
	if in.Longitude != nil && !utils.ValidLongitude(*in.Longitude) {
		return nil, validation("longitude out of range")
	}

	var meta datatypes.JSON
	if len(in.Meta) > 0 && string(in.Meta) != "null" {
		if !json.Valid(in.Meta) {
			return nil, validation("meta must be valid JSON")
		}
		meta = datatypes.JSON(in.Meta)
	}

	now := s.now()
	event := &models.BookingEvent{
		BookingID: bookingID,
		Actor:     in.Actor,
		Type:      in.Type,
		Latitude:  in.Latitude,
		Longitude: in.Longitude,
		Meta:      meta,
		CreatedAt: now,
	}
	patch := Projection(event, now)

	err := s.repo.Transaction(ctx, func(tx repository.Repository) error {
		if _, err := tx.FindBookingByID(ctx, bookingID); err != nil {
			return err
		}
		if err := tx.AppendEvent(ctx, event); err != nil {
			return err
		}
		return tx.UpdateBooking(ctx, bookingID, patch)
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("Booking not found")
		}
		return nil, internal("Failed to record event", err)
	}

	span.SetAttributes(
		attribute.Int64("booking.id", int64(bookingID)),
		attribute.String("event.type", event.Type),
		attribute.Bool("event.projected", !patch.Empty()),
	)

	entry := s.log.WithFields(logrus.Fields{
		"booking_id": bookingID,
		"event_id":   event.ID,
		"actor":      event.Actor,
		"type":       event.Type,
	})
	if patch.Empty() {
		entry.Info("event recorded without projection")
	} else {
		entry.Info("event recorded")
	}

	if event.Type == models.EventLocation && event.Latitude != nil && event.Longitude != nil && s.locations != nil {
		if err := s.locations.SetLocation(ctx, bookingID, event.Actor, *event.Latitude, *event.Longitude); err != nil {
			s.log.WithError(err).WithField("booking_id", bookingID).Warn("location cache write failed")
		}
	}
	s.publish(ctx, TopicBookingEvent, event)

	return event, nil
}

// Events lists a booking's events newest first.
func (s *Service) Events(ctx context.Context, bookingID uint, limit int) ([]models.BookingEvent, error) {
	events, err := s.repo.ListEvents(ctx, bookingID, limit)
	if err != nil {
		return nil, internal("Failed to load events", err)
	}
	if events == nil {
		events = []models.BookingEvent{}
	}
	return events, nil
}
