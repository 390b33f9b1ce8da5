package models

import "time"

type TherapistStatus string

const (
	TherapistPending  TherapistStatus = "pending"
	TherapistApproved TherapistStatus = "approved"
	TherapistRejected TherapistStatus = "rejected"
)

// Therapist is the onboarding profile an admin approves before the therapist
// can be booked.
type Therapist struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	UserID      uint            `gorm:"not null;uniqueIndex" json:"userId"`
	User        *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	DisplayName string          `gorm:"size:255;not null" json:"displayName"`
	Bio         string          `gorm:"type:text" json:"bio"`
	Specialties string          `gorm:"size:255" json:"specialties"`
	LicenseURL  string          `gorm:"size:512" json:"licenseUrl,omitempty"`
	Status      TherapistStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`
	ReviewNote  string          `gorm:"type:text" json:"reviewNote,omitempty"`
	ReviewedAt  *time.Time      `json:"reviewedAt,omitempty"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName specifies the table name
func (Therapist) TableName() string {
	return "therapists"
}

func (t *Therapist) Bookable() bool {
	return t.Status == TherapistApproved
}
