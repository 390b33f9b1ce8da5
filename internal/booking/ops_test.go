package booking

import (
	"context"
	"testing"

	"github.com/chachabrian/hilot-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActiveBookings(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	tracked := f.checkout(t)
	untracked := f.checkout(t)
	gone := f.checkout(t)
	done := f.checkout(t)

	_, err := f.svc.AppendEvent(ctx, tracked.ID, EventInput{Actor: models.ActorClient, Type: "location", Latitude: float(14.5995), Longitude: float(120.9842)})
	require.NoError(t, err)
	_, err = f.svc.AppendEvent(ctx, tracked.ID, EventInput{Actor: models.ActorTherapist, Type: "location", Latitude: float(14.5547), Longitude: float(121.0244)})
	require.NoError(t, err)
	_, err = f.svc.AppendEvent(ctx, tracked.ID, EventInput{Actor: models.ActorTherapist, Type: "start"})
	require.NoError(t, err)
	_, err = f.svc.Cancel(ctx, gone.ID)
	require.NoError(t, err)
	_, err = f.svc.AppendEvent(ctx, done.ID, EventInput{Actor: models.ActorTherapist, Type: "complete"})
	require.NoError(t, err)

	rows, err := f.svc.ActiveBookings(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byID := map[uint]models.ActiveBooking{}
	for _, r := range rows {
		byID[r.ID] = r
		assert.Equal(t, "Ana Reyes", r.ClientName)
		assert.Equal(t, "Maria S.", r.TherapistName)
		assert.Equal(t, "Traditional Hilot", r.ServiceName)
	}

	require.Contains(t, byID, tracked.ID)
	assert.Equal(t, models.BookingStatusInProgress, byID[tracked.ID].Status)
	require.NotNil(t, byID[tracked.ID].DistanceKm)
	assert.InDelta(t, 6.6, *byID[tracked.ID].DistanceKm, 0.3)

	require.Contains(t, byID, untracked.ID)
	assert.Nil(t, byID[untracked.ID].DistanceKm)
}

func TestActiveBookingsEmpty(t *testing.T) {
	f := newFixture(t, nil)

	rows, err := f.svc.ActiveBookings(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}
