package models

import (
	"time"

	"gorm.io/datatypes"
)

type EventActor string

const (
	ActorClient    EventActor = "client"
	ActorTherapist EventActor = "therapist"
	ActorOps       EventActor = "ops"
	ActorSystem    EventActor = "system"
)

func (a EventActor) Valid() bool {
	switch a {
	case ActorClient, ActorTherapist, ActorOps, ActorSystem:
		return true
	}
	return false
}

// Event types with a projection onto the booking row. Other types are stored
// as-is.
const (
	EventLocation          = "location"
	EventCheckIn           = "check-in"
	EventStart             = "start"
	EventComplete          = "complete"
	EventBluetoothVerified = "bluetooth-verified"
	EventCancelled         = "cancelled"

	EventCreated          = "created"
	EventPaymentConfirmed = "payment-confirmed"
	EventPaymentFailed    = "payment-failed"
)

// BookingEvent is append-only: rows are never updated or deleted.
type BookingEvent struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	BookingID uint           `gorm:"not null;index:idx_booking_events_booking_created,priority:1" json:"bookingId"`
	Booking   *Booking       `gorm:"foreignKey:BookingID;constraint:OnDelete:RESTRICT" json:"-"`
	Actor     EventActor     `gorm:"size:20;not null" json:"actor"`
	Type      string         `gorm:"type:text;not null" json:"type"`
	Latitude  *float64       `json:"latitude,omitempty"`
	Longitude *float64       `json:"longitude,omitempty"`
	Meta      datatypes.JSON `gorm:"type:jsonb" json:"meta,omitempty"`
	CreatedAt time.Time      `gorm:"autoCreateTime;index:idx_booking_events_booking_created,priority:2" json:"createdAt"`
}

// TableName specifies the table name
func (BookingEvent) TableName() string {
	return "booking_events"
}
