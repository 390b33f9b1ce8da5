package handlers

import (
	"strconv"

	"github.com/chachabrian/hilot-backend/internal/booking"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// respondError renders err as {error, code?, message?}. Internal failures are
// logged with their cause and never leak it to the client.
func respondError(c *gin.Context, log *logrus.Logger, err error) {
	e := booking.AsError(err)
	status := e.HTTPStatus()

	if status >= 500 {
		log.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).WithError(err).Error("request failed")
	}

	body := gin.H{"error": e.Message}
	if e.Code != "" {
		body["code"] = e.Code
	}
	if e.Detail != "" {
		body["message"] = e.Detail
	}
	c.JSON(status, body)
}

func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
