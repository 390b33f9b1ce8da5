package models

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Role string

const (
	RoleClient    Role = "client"
	RoleTherapist Role = "therapist"
	RoleOps       Role = "ops"
	RoleAdmin     Role = "admin"
)

type User struct {
	gorm.Model          // This embeds ID, CreatedAt, UpdatedAt, and DeletedAt
	Email        string `gorm:"column:email;uniqueIndex;not null" json:"email"`
	Name         string `gorm:"column:name" json:"name"`
	Phone        string `gorm:"column:phone" json:"phone"`
	Role         Role   `gorm:"column:role;size:20;not null;default:'client'" json:"role"`
	PasswordHash string `gorm:"column:password_hash" json:"-"`
	FCMToken     string `gorm:"column:fcm_token" json:"-"`
}

// TableName specifies the table name
func (User) TableName() string {
	return "users"
}

// NormalizeEmail is the canonical form used for lookups and the unique index.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}

// HasPassword is false for accounts created by guest checkout.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}
