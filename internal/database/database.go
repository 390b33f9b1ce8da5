package database

import (
	"time"

	"github.com/chachabrian/hilot-backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB opens the postgres connection pool and migrates the schema.
func InitDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Models lists every table the API owns, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Service{},
		&models.Therapist{},
		&models.Booking{},
		&models.BookingEvent{},
		&models.OTP{},
	}
}
