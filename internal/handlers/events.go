package handlers

import (
	"strconv"

	"github.com/chachabrian/hilot-backend/internal/booking"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func AppendEvent(svc *booking.Service, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			c.JSON(400, gin.H{"error": "Invalid booking ID"})
			return
		}

		var in booking.EventInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(400, gin.H{"error": "Invalid request body"})
			return
		}

		event, err := svc.AppendEvent(c.Request.Context(), id, in)
		if err != nil {
			respondError(c, log, err)
			return
		}

		c.JSON(200, gin.H{"event": event})
	}
}

// ListEvents returns the newest events first. limit defaults to and is capped
// at 100.
func ListEvents(svc *booking.Service, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			c.JSON(400, gin.H{"error": "Invalid booking ID"})
			return
		}

		limit := 0
		if raw := c.Query("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				c.JSON(400, gin.H{"error": "Invalid limit"})
				return
			}
			limit = n
		}

		events, err := svc.Events(c.Request.Context(), id, limit)
		if err != nil {
			respondError(c, log, err)
			return
		}

		c.JSON(200, gin.H{"events": events})
	}
}
