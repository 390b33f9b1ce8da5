package handlers

import (
	"github.com/chachabrian/hilot-backend/internal/booking"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// WebhookInput is the gateway's event envelope. Only the id is trusted; the
// event itself is fetched back from the gateway.
type WebhookInput struct {
	ID  string `json:"id"`
	Key string `json:"key"`
}

func PaymentWebhook(svc *booking.Service, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in WebhookInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(400, gin.H{"error": "Invalid request body"})
			return
		}

		outcome, err := svc.HandlePaymentEvent(c.Request.Context(), in.ID)
		if err != nil {
			respondError(c, log, err)
			return
		}

		log.WithFields(logrus.Fields{
			"event_id": in.ID,
			"key":      in.Key,
			"outcome":  outcome,
		}).Info("payment webhook handled")

		c.JSON(200, gin.H{"received": true, "outcome": outcome})
	}
}
