package models

import (
	"time"

	"gorm.io/gorm"
)

// OTPType defines the purpose of the OTP
type OTPType string

const (
	// OTPTypeEmailVerification proves ownership of the email on a guest
	// account before it is claimed.
	OTPTypeEmailVerification OTPType = "email_verification"
)

// OTP model for storing one-time passwords
type OTP struct {
	gorm.Model
	UserID    uint      `gorm:"not null;index" json:"userId"`
	Code      string    `gorm:"size:10;not null" json:"-"`
	Type      OTPType   `gorm:"size:30;not null" json:"type"`
	ExpiresAt time.Time `gorm:"not null" json:"expiresAt"`
	Used      bool      `gorm:"default:false" json:"used"`
	Attempts  int       `gorm:"default:0" json:"-"`
}

// TableName specifies the table name
func (OTP) TableName() string {
	return "otps"
}

// IsValid checks if the OTP is valid (not expired and not used)
func (o *OTP) IsValid(now time.Time) bool {
	return !o.Used && now.Before(o.ExpiresAt)
}
