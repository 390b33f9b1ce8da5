package repository

import (
	"context"
	"errors"
	"time"

	"github.com/chachabrian/hilot-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Postgres is the gorm-backed Repository.
type Postgres struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *Postgres {
	return &Postgres{db: db}
}

func (r *Postgres) Transaction(ctx context.Context, fn func(tx Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Postgres{db: tx})
	})
}

func (r *Postgres) FindUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *Postgres) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", models.NormalizeEmail(email)).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *Postgres) CreateUser(ctx context.Context, u *models.User) error {
	u.Email = models.NormalizeEmail(u.Email)
	return translate(r.db.WithContext(ctx).Create(u).Error)
}

func (r *Postgres) SaveUser(ctx context.Context, u *models.User) error {
	return translate(r.db.WithContext(ctx).Save(u).Error)
}

func (r *Postgres) FindOrCreateUserByEmail(ctx context.Context, u *models.User) (*models.User, error) {
	u.Email = models.NormalizeEmail(u.Email)

	// ON CONFLICT DO NOTHING keeps concurrent guest checkouts from racing on the
	// unique email index; the row is read back either way.
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "email"}}, DoNothing: true}).
		Create(u).Error
	if err != nil {
		return nil, translate(err)
	}
	return r.FindUserByEmail(ctx, u.Email)
}

func (r *Postgres) FindServiceByID(ctx context.Context, id uint) (*models.Service, error) {
	var service models.Service
	if err := r.db.WithContext(ctx).First(&service, id).Error; err != nil {
		return nil, translate(err)
	}
	return &service, nil
}

func (r *Postgres) FindOrCreateService(ctx context.Context, s *models.Service) (*models.Service, error) {
	var existing models.Service
	err := r.db.WithContext(ctx).
		Where("LOWER(name) = LOWER(?) AND category = ? AND base_price = ? AND duration = ?",
			s.Name, s.Category, s.BasePrice, s.Duration).
		Order("id").
		First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		return nil, translate(err)
	}
	return s, nil
}

func (r *Postgres) ListServices(ctx context.Context) ([]models.Service, error) {
	var services []models.Service
	err := r.db.WithContext(ctx).Order("category, name").Find(&services).Error
	return services, err
}

func (r *Postgres) FindTherapistByID(ctx context.Context, id uint) (*models.Therapist, error) {
	var therapist models.Therapist
	if err := r.db.WithContext(ctx).Preload("User").First(&therapist, id).Error; err != nil {
		return nil, translate(err)
	}
	return &therapist, nil
}

func (r *Postgres) FindTherapistByUserID(ctx context.Context, userID uint) (*models.Therapist, error) {
	var therapist models.Therapist
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&therapist).Error; err != nil {
		return nil, translate(err)
	}
	return &therapist, nil
}

func (r *Postgres) CreateTherapist(ctx context.Context, t *models.Therapist) error {
	return translate(r.db.WithContext(ctx).Create(t).Error)
}

func (r *Postgres) SaveTherapist(ctx context.Context, t *models.Therapist) error {
	return translate(r.db.WithContext(ctx).Omit("User").Save(t).Error)
}

func (r *Postgres) ListTherapistsByStatus(ctx context.Context, status models.TherapistStatus) ([]models.Therapist, error) {
	var therapists []models.Therapist
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at ASC").
		Find(&therapists).Error
	return therapists, err
}

func (r *Postgres) CreateBooking(ctx context.Context, b *models.Booking) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(b).Error)
}

func (r *Postgres) FindBookingByID(ctx context.Context, id uint) (*models.Booking, error) {
	var booking models.Booking
	if err := r.db.WithContext(ctx).First(&booking, id).Error; err != nil {
		return nil, translate(err)
	}
	return &booking, nil
}

func (r *Postgres) FindBookingByIdempotencyKey(ctx context.Context, key string) (*models.Booking, error) {
	var booking models.Booking
	if err := r.db.WithContext(ctx).Where("idempotency_key = ?", key).First(&booking).Error; err != nil {
		return nil, translate(err)
	}
	return &booking, nil
}

func (r *Postgres) FindBookingByPaymentIntent(ctx context.Context, intentID string) (*models.Booking, error) {
	var booking models.Booking
	if err := r.db.WithContext(ctx).Where("payment_intent_id = ?", intentID).First(&booking).Error; err != nil {
		return nil, translate(err)
	}
	return &booking, nil
}

func (r *Postgres) UpdateBooking(ctx context.Context, id uint, patch models.BookingPatch) error {
	cols := patch.Columns()
	if len(cols) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&models.Booking{}).Where("id = ?", id).Updates(cols)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Postgres) CancelBooking(ctx context.Context, id uint, from []models.BookingStatus) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Booking{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(map[string]interface{}{
			"status":         models.BookingStatusCancelled,
			"payment_status": models.PaymentStatusFailed,
		})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return true, nil
	}
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Booking{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	if n == 0 {
		return false, ErrNotFound
	}
	return false, nil
}

func (r *Postgres) CreateOTP(ctx context.Context, o *models.OTP) error {
	return translate(r.db.WithContext(ctx).Create(o).Error)
}

func (r *Postgres) SaveOTP(ctx context.Context, o *models.OTP) error {
	return translate(r.db.WithContext(ctx).Save(o).Error)
}

func (r *Postgres) InvalidateOTPs(ctx context.Context, userID uint, otpType models.OTPType) error {
	return r.db.WithContext(ctx).Model(&models.OTP{}).
		Where("user_id = ? AND type = ? AND used = ?", userID, otpType, false).
		Update("used", true).Error
}

func (r *Postgres) FindActiveOTP(ctx context.Context, userID uint, otpType models.OTPType, now time.Time) (*models.OTP, error) {
	var otp models.OTP
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND type = ? AND used = ? AND expires_at > ?", userID, otpType, false, now).
		Order("id DESC").
		First(&otp).Error
	if err != nil {
		return nil, translate(err)
	}
	return &otp, nil
}

func (r *Postgres) ListBookingsByClient(ctx context.Context, clientID uint) ([]models.Booking, error) {
	var bookings []models.Booking
	err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Preload("Service").
		Preload("Therapist").
		Order("created_at DESC").
		Find(&bookings).Error
	return bookings, err
}

func (r *Postgres) ListActiveBookings(ctx context.Context) ([]models.ActiveBooking, error) {
	var rows []models.ActiveBooking
	err := r.db.WithContext(ctx).
		Table("bookings").
		Select("bookings.*, COALESCE(users.name, bookings.client_email) AS client_name, therapists.display_name AS therapist_name, services.name AS service_name").
		Joins("LEFT JOIN users ON users.id = bookings.client_id").
		Joins("LEFT JOIN therapists ON therapists.id = bookings.therapist_id").
		Joins("LEFT JOIN services ON services.id = bookings.service_id").
		Where("bookings.status IN ?", []models.BookingStatus{models.BookingStatusConfirmed, models.BookingStatusInProgress}).
		Order("bookings.booking_date ASC, bookings.start_time ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *Postgres) AppendEvent(ctx context.Context, e *models.BookingEvent) error {
	return translate(r.db.WithContext(ctx).Omit("Booking").Create(e).Error)
}

func (r *Postgres) ListEvents(ctx context.Context, bookingID uint, limit int) ([]models.BookingEvent, error) {
	var events []models.BookingEvent
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at DESC, id DESC").
		Limit(ClampLimit(limit)).
		Find(&events).Error
	return events, err
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}
