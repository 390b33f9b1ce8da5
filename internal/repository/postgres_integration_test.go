//go:build integration

package repository_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/chachabrian/hilot-backend/internal/database"
	"github.com/chachabrian/hilot-backend/internal/models"
	"github.com/chachabrian/hilot-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupPostgres(t *testing.T) *repository.Postgres {
	t.Helper()
	ctx := context.Background()

	pgC, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("hilot"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(context.Background()) })

	dsn, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(db))

	return repository.NewPostgres(db)
}

func TestPostgresRepository(t *testing.T) {
	repo := setupPostgres(t)
	ctx := context.Background()

	therapistUser := &models.User{Email: "maria@hilot.test", Name: "Maria", Role: models.RoleTherapist}
	require.NoError(t, repo.CreateUser(ctx, therapistUser))
	therapist := &models.Therapist{UserID: therapistUser.ID, DisplayName: "Maria S.", Status: models.TherapistApproved}
	require.NoError(t, repo.CreateTherapist(ctx, therapist))

	svc, err := repo.FindOrCreateService(ctx, &models.Service{Name: "Hilot", Duration: 60, BasePrice: 1399, Category: "massage"})
	require.NoError(t, err)
	again, err := repo.FindOrCreateService(ctx, &models.Service{Name: "hilot", Duration: 60, BasePrice: 1399, Category: "massage"})
	require.NoError(t, err)
	assert.Equal(t, svc.ID, again.ID)

	client, err := repo.FindOrCreateUserByEmail(ctx, &models.User{Email: "Ana@Example.com", Name: "Ana"})
	require.NoError(t, err)
	same, err := repo.FindOrCreateUserByEmail(ctx, &models.User{Email: "ana@example.com"})
	require.NoError(t, err)
	assert.Equal(t, client.ID, same.ID)

	t.Run("booking with event commits together", func(t *testing.T) {
		key := "key-1"
		b := &models.Booking{
			ClientID: &client.ID, TherapistID: therapist.ID, ServiceID: svc.ID, ClientEmail: client.Email,
			BookingDate: "2026-10-20", StartTime: "14:00", Duration: 60,
			TotalAmount: 1474, PlatformFee: 75, TherapistPayout: 1399,
			Status: models.BookingStatusConfirmed, PaymentStatus: models.PaymentStatusPaid,
			PaymentIntentID: "sim_1", IdempotencyKey: &key,
		}
		err := repo.Transaction(ctx, func(tx repository.Repository) error {
			if err := tx.CreateBooking(ctx, b); err != nil {
				return err
			}
			return tx.AppendEvent(ctx, &models.BookingEvent{BookingID: b.ID, Actor: models.ActorSystem, Type: models.EventCreated})
		})
		require.NoError(t, err)

		found, err := repo.FindBookingByIdempotencyKey(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, b.ID, found.ID)

		dup := *b
		dup.ID = 0
		assert.ErrorIs(t, repo.CreateBooking(ctx, &dup), repository.ErrDuplicate)

		lat, lng := 14.6, 121.0
		require.NoError(t, repo.UpdateBooking(ctx, b.ID, models.BookingPatch{LastTherapistLatitude: &lat, LastTherapistLongitude: &lng}))

		rows, err := repo.ListActiveBookings(ctx)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Ana", rows[0].ClientName)
		assert.Equal(t, "Maria S.", rows[0].TherapistName)
		assert.Equal(t, "Hilot", rows[0].ServiceName)
		require.NotNil(t, rows[0].LastTherapistLatitude)
		assert.Equal(t, 14.6, *rows[0].LastTherapistLatitude)
	})

	t.Run("failed transaction rolls back", func(t *testing.T) {
		boom := errors.New("boom")
		b := &models.Booking{
			TherapistID: therapist.ID, ServiceID: svc.ID, ClientEmail: "x@y.z",
			BookingDate: "2026-10-21", StartTime: "09:00", Duration: 60,
			Status: models.BookingStatusPending, PaymentStatus: models.PaymentStatusPending,
		}
		err := repo.Transaction(ctx, func(tx repository.Repository) error {
			if err := tx.CreateBooking(ctx, b); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		_, err = repo.FindBookingByID(ctx, b.ID)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("check constraint keeps failed payments unconfirmed", func(t *testing.T) {
		b := &models.Booking{
			TherapistID: therapist.ID, ServiceID: svc.ID, ClientEmail: "x@y.z",
			BookingDate: "2026-10-22", StartTime: "09:00", Duration: 60,
			Status: models.BookingStatusConfirmed, PaymentStatus: models.PaymentStatusFailed,
		}
		assert.Error(t, repo.CreateBooking(ctx, b))
	})

	t.Run("events newest first", func(t *testing.T) {
		var bookingID uint
		rows, err := repo.ListActiveBookings(ctx)
		require.NoError(t, err)
		bookingID = rows[0].ID

		for i := 0; i < 3; i++ {
			require.NoError(t, repo.AppendEvent(ctx, &models.BookingEvent{BookingID: bookingID, Actor: models.ActorClient, Type: "note"}))
		}
		events, err := repo.ListEvents(ctx, bookingID, 2)
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Greater(t, events[0].ID, events[1].ID)

		assert.Error(t, repo.AppendEvent(ctx, &models.BookingEvent{BookingID: 999999, Actor: models.ActorClient, Type: "note"}))
	})

	t.Run("conditional cancel changes the row once", func(t *testing.T) {
		b := &models.Booking{
			TherapistID: therapist.ID, ServiceID: svc.ID, ClientEmail: "x@y.z",
			BookingDate: "2026-10-23", StartTime: "09:00", Duration: 60,
			Status: models.BookingStatusPending, PaymentStatus: models.PaymentStatusPending,
		}
		require.NoError(t, repo.CreateBooking(ctx, b))
		from := []models.BookingStatus{models.BookingStatusPending, models.BookingStatusConfirmed}

		changed, err := repo.CancelBooking(ctx, b.ID, from)
		require.NoError(t, err)
		assert.True(t, changed)

		changed, err = repo.CancelBooking(ctx, b.ID, from)
		require.NoError(t, err)
		assert.False(t, changed)

		_, err = repo.CancelBooking(ctx, 424242, from)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("long event types are stored", func(t *testing.T) {
		rows, err := repo.ListActiveBookings(ctx)
		require.NoError(t, err)
		require.NoError(t, repo.AppendEvent(ctx, &models.BookingEvent{
			BookingID: rows[0].ID, Actor: models.ActorTherapist, Type: strings.Repeat("x", 100),
		}))
	})

	t.Run("unknown rows", func(t *testing.T) {
		_, err := repo.FindBookingByID(ctx, 424242)
		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.ErrorIs(t, repo.UpdateBooking(ctx, 424242, models.BookingPatch{LastClientLatitude: new(float64)}), repository.ErrNotFound)
	})
}
