package booking

import (
	"context"
	"math"

	"github.com/chachabrian/hilot-backend/internal/models"
	"github.com/chachabrian/hilot-backend/pkg/utils"
)

// ActiveBookings is the ops dashboard read model: confirmed and in-progress
// bookings with party names and the client-to-therapist distance.
func (s *Service) ActiveBookings(ctx context.Context) ([]models.ActiveBooking, error) {
	rows, err := s.repo.ListActiveBookings(ctx)
	if err != nil {
		return nil, internal("Failed to load active bookings", err)
	}
	if rows == nil {
		rows = []models.ActiveBooking{}
	}

	for i := range rows {
		b := &rows[i]
		if b.LastClientLatitude == nil || b.LastClientLongitude == nil ||
			b.LastTherapistLatitude == nil || b.LastTherapistLongitude == nil {
			continue
		}
		km := utils.HaversineDistance(
			*b.LastClientLatitude, *b.LastClientLongitude,
			*b.LastTherapistLatitude, *b.LastTherapistLongitude,
		)
		km = math.Round(km*100) / 100
		b.DistanceKm = &km
	}
	return rows, nil
}
