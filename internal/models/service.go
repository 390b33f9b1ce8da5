package models

import "time"

// Service is a bookable treatment. Prices are in major currency units.
type Service struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Duration  int       `gorm:"not null;default:60" json:"duration"` // in minutes
	BasePrice float64   `gorm:"type:decimal(10,2);not null" json:"basePrice"`
	Category  string    `gorm:"size:100" json:"category"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName specifies the table name
func (Service) TableName() string {
	return "services"
}
