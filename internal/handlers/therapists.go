package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/chachabrian/hilot-backend/internal/booking"
	"github.com/chachabrian/hilot-backend/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ApplyTherapist takes a multipart application with an optional license file.
func ApplyTherapist(svc *booking.Service, docs booking.DocumentStore, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint(middleware.KeyUserID)

		license, err := c.FormFile("license")
		if err != nil && !errors.Is(err, http.ErrMissingFile) {
			c.JSON(400, gin.H{"error": "Invalid license upload"})
			return
		}

		t, err := svc.Apply(c.Request.Context(), userID, booking.ApplyInput{
			DisplayName: c.PostForm("displayName"),
			Bio:         c.PostForm("bio"),
			Specialties: c.PostForm("specialties"),
			License:     license,
		}, docs)
		if err != nil {
			respondError(c, log, err)
			return
		}

		c.JSON(201, gin.H{"therapist": t})
	}
}

func PendingTherapists(svc *booking.Service, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		queue, err := svc.PendingTherapists(c.Request.Context())
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(200, gin.H{"therapists": queue})
	}
}

type ReviewInput struct {
	Note string `json:"note"`
}

// ReviewTherapist approves or rejects a pending application.
func ReviewTherapist(svc *booking.Service, approve bool, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			c.JSON(400, gin.H{"error": "Invalid therapist ID"})
			return
		}

		var in ReviewInput
		if err := c.ShouldBindJSON(&in); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(400, gin.H{"error": "Invalid request body"})
			return
		}

		t, err := svc.ReviewTherapist(c.Request.Context(), id, approve, in.Note)
		if err != nil {
			respondError(c, log, err)
			return
		}

		c.JSON(200, gin.H{"therapist": t})
	}
}
