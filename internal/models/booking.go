package models

import "time"

type BookingStatus string

const (
	BookingStatusPending    BookingStatus = "pending"
	BookingStatusConfirmed  BookingStatus = "confirmed"
	BookingStatusInProgress BookingStatus = "in_progress"
	BookingStatusCompleted  BookingStatus = "completed"
	BookingStatusCancelled  BookingStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// Booking is the source of truth for a booking's current state. The tracking
// fields are denormalized from the booking event log.
type Booking struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	ClientID    *uint      `gorm:"index" json:"clientId"`
	Client      *User      `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	TherapistID uint       `gorm:"not null;index" json:"therapistId"`
	Therapist   *Therapist `gorm:"foreignKey:TherapistID" json:"therapist,omitempty"`
	ServiceID   uint       `gorm:"not null" json:"serviceId"`
	Service     *Service   `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
	ClientEmail string     `gorm:"size:255;not null" json:"clientEmail"`

	BookingDate string `gorm:"size:10;not null;index" json:"bookingDate"` // YYYY-MM-DD
	StartTime   string `gorm:"size:5;not null" json:"startTime"`          // HH:MM
	Duration    int    `gorm:"not null" json:"duration"`                  // in minutes

	TotalAmount     float64 `gorm:"type:decimal(10,2);not null" json:"totalAmount"`
	DiscountAmount  float64 `gorm:"type:decimal(10,2);not null;default:0" json:"discountAmount"`
	PlatformFee     float64 `gorm:"type:decimal(10,2);not null" json:"platformFee"`
	TherapistPayout float64 `gorm:"type:decimal(10,2);not null" json:"therapistPayout"`
	CouponCode      string  `gorm:"size:50" json:"couponCode,omitempty"`

	Status          BookingStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`
	PaymentStatus   PaymentStatus `gorm:"size:20;not null;default:'pending'" json:"paymentStatus"`
	PaymentIntentID string        `gorm:"size:255;index" json:"paymentIntentId"`
	IdempotencyKey  *string       `gorm:"size:255;uniqueIndex" json:"-"`
	Notes           string        `gorm:"type:text" json:"notes,omitempty"`

	LastClientLatitude     *float64   `json:"lastClientLatitude"`
	LastClientLongitude    *float64   `json:"lastClientLongitude"`
	LastTherapistLatitude  *float64   `json:"lastTherapistLatitude"`
	LastTherapistLongitude *float64   `json:"lastTherapistLongitude"`
	ClientCheckedInAt      *time.Time `json:"clientCheckedInAt"`
	TherapistCheckedInAt   *time.Time `json:"therapistCheckedInAt"`
	SessionStartedAt       *time.Time `json:"sessionStartedAt"`
	SessionCompletedAt     *time.Time `json:"sessionCompletedAt"`
	BluetoothVerified      bool       `gorm:"not null;default:false" json:"bluetoothVerified"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName specifies the table name
func (Booking) TableName() string {
	return "bookings"
}

// BookingPatch is a partial update of a booking. Nil fields are left alone.
type BookingPatch struct {
	Status                 *BookingStatus
	PaymentStatus          *PaymentStatus
	LastClientLatitude     *float64
	LastClientLongitude    *float64
	LastTherapistLatitude  *float64
	LastTherapistLongitude *float64
	ClientCheckedInAt      *time.Time
	TherapistCheckedInAt   *time.Time
	SessionStartedAt       *time.Time
	SessionCompletedAt     *time.Time
	BluetoothVerified      *bool
}

func (p BookingPatch) Empty() bool {
	return len(p.Columns()) == 0
}

// Columns maps the set fields to their column names.
func (p BookingPatch) Columns() map[string]interface{} {
	cols := map[string]interface{}{}
	if p.Status != nil {
		cols["status"] = *p.Status
	}
	if p.PaymentStatus != nil {
		cols["payment_status"] = *p.PaymentStatus
	}
	if p.LastClientLatitude != nil {
		cols["last_client_latitude"] = *p.LastClientLatitude
	}
	if p.LastClientLongitude != nil {
		cols["last_client_longitude"] = *p.LastClientLongitude
	}
	if p.LastTherapistLatitude != nil {
		cols["last_therapist_latitude"] = *p.LastTherapistLatitude
	}
	if p.LastTherapistLongitude != nil {
		cols["last_therapist_longitude"] = *p.LastTherapistLongitude
	}
	if p.ClientCheckedInAt != nil {
		cols["client_checked_in_at"] = *p.ClientCheckedInAt
	}
	if p.TherapistCheckedInAt != nil {
		cols["therapist_checked_in_at"] = *p.TherapistCheckedInAt
	}
	if p.SessionStartedAt != nil {
		cols["session_started_at"] = *p.SessionStartedAt
	}
	if p.SessionCompletedAt != nil {
		cols["session_completed_at"] = *p.SessionCompletedAt
	}
	if p.BluetoothVerified != nil {
		cols["bluetooth_verified"] = *p.BluetoothVerified
	}
	return cols
}

// Apply copies the set fields onto b.
func (p BookingPatch) Apply(b *Booking) {
	if p.Status != nil {
		b.Status = *p.Status
	}
	if p.PaymentStatus != nil {
		b.PaymentStatus = *p.PaymentStatus
	}
	if p.LastClientLatitude != nil {
		b.LastClientLatitude = p.LastClientLatitude
	}
	if p.LastClientLongitude != nil {
		b.LastClientLongitude = p.LastClientLongitude
	}
	if p.LastTherapistLatitude != nil {
		b.LastTherapistLatitude = p.LastTherapistLatitude
	}
	if p.LastTherapistLongitude != nil {
		b.LastTherapistLongitude = p.LastTherapistLongitude
	}
	if p.ClientCheckedInAt != nil {
		b.ClientCheckedInAt = p.ClientCheckedInAt
	}
	if p.TherapistCheckedInAt != nil {
		b.TherapistCheckedInAt = p.TherapistCheckedInAt
	}
	if p.SessionStartedAt != nil {
		b.SessionStartedAt = p.SessionStartedAt
	}
	if p.SessionCompletedAt != nil {
		b.SessionCompletedAt = p.SessionCompletedAt
	}
	if p.BluetoothVerified != nil {
		b.BluetoothVerified = *p.BluetoothVerified
	}
}

// ActiveBooking is the ops dashboard row.
type ActiveBooking struct {
	Booking
	ClientName    string   `json:"clientName"`
	TherapistName string   `json:"therapistName"`
	ServiceName   string   `json:"serviceName"`
	DistanceKm    *float64 `gorm:"-" json:"distanceKm,omitempty"`
}
