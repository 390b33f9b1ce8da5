package handlers

import (
	"github.com/chachabrian/hilot-backend/internal/booking"
	"github.com/chachabrian/hilot-backend/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// GetBooking backs the client tracking page.
func GetBooking(svc *booking.Service, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			c.JSON(400, gin.H{"error": "Invalid booking ID"})
			return
		}

		b, err := svc.Booking(c.Request.Context(), id)
		if err != nil {
			respondError(c, log, err)
			return
		}

		c.JSON(200, gin.H{"booking": b})
	}
}

func MyBookings(svc *booking.Service, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint(middleware.KeyUserID)

		bookings, err := svc.ClientBookings(c.Request.Context(), userID)
		if err != nil {
			respondError(c, log, err)
			return
		}

		c.JSON(200, gin.H{"bookings": bookings})
	}
}

func CancelBooking(svc *booking.Service, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			c.JSON(400, gin.H{"error": "Invalid booking ID"})
			return
		}

		res, err := svc.Cancel(c.Request.Context(), id)
		if err != nil {
			respondError(c, log, err)
			return
		}
		if res.AlreadyCancelled {
			c.JSON(200, gin.H{"message": "Already cancelled"})
			return
		}

		c.JSON(200, gin.H{"booking": res.Booking})
	}
}

// ActiveBookings feeds the ops dashboard.
func ActiveBookings(svc *booking.Service, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := svc.ActiveBookings(c.Request.Context())
		if err != nil {
			respondError(c, log, err)
			return
		}

		c.JSON(200, gin.H{"bookings": rows})
	}
}
