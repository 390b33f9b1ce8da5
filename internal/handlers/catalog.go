package handlers

import (
	"github.com/chachabrian/hilot-backend/internal/booking"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func ListServices(svc *booking.Service, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		services, err := svc.Services(c.Request.Context())
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(200, gin.H{"services": services})
	}
}

// ListTherapists only returns approved, bookable therapists.
func ListTherapists(svc *booking.Service, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		therapists, err := svc.ApprovedTherapists(c.Request.Context())
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(200, gin.H{"therapists": therapists})
	}
}
