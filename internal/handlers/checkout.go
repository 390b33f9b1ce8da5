package handlers

import (
	"strings"

	"github.com/chachabrian/hilot-backend/internal/booking"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// IdempotencyHeader lets clients retry a checkout without paying twice.
const IdempotencyHeader = "Idempotency-Key"

func Checkout(svc *booking.Service, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req booking.CheckoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(400, gin.H{"error": "Invalid request body"})
			return
		}
		req.IdempotencyKey = strings.TrimSpace(c.GetHeader(IdempotencyHeader))

		res, err := svc.Checkout(c.Request.Context(), req)
		if err != nil {
			respondError(c, log, err)
			return
		}

		c.JSON(200, res)
	}
}
