package database

import (
	"fmt"

	"gorm.io/gorm"
)

// constraints are re-applied on every start so they track the Go enums.
var constraints = []struct {
	table, name, check string
}{
	{"users", "users_role_check", "role IN ('client', 'therapist', 'ops', 'admin')"},
	{"therapists", "therapists_status_check", "status IN ('pending', 'approved', 'rejected')"},
	{"bookings", "bookings_status_check", "status IN ('pending', 'confirmed', 'in_progress', 'completed', 'cancelled')"},
	{"bookings", "bookings_payment_status_check", "payment_status IN ('pending', 'paid', 'failed')"},
	{"bookings", "bookings_failed_not_confirmed_check", "NOT (payment_status = 'failed' AND status = 'confirmed')"},
	{"booking_events", "booking_events_actor_check", "actor IN ('client', 'therapist', 'ops', 'system')"},
}

func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	for _, c := range constraints {
		if err := db.Exec(fmt.Sprintf(`ALTER TABLE %s DROP CONSTRAINT IF EXISTS %s`, c.table, c.name)).Error; err != nil {
			return fmt.Errorf("drop %s: %w", c.name, err)
		}
		if err := db.Exec(fmt.Sprintf(`ALTER TABLE %s ADD CONSTRAINT %s CHECK (%s)`, c.table, c.name, c.check)).Error; err != nil {
			return fmt.Errorf("add %s: %w", c.name, err)
		}
	}

	// The ops dashboard filters on status and sorts by schedule.
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_bookings_active_schedule
		ON bookings (booking_date, start_time) WHERE status IN ('confirmed', 'in_progress')`).Error; err != nil {
		return fmt.Errorf("active bookings index: %w", err)
	}
	return nil
}
