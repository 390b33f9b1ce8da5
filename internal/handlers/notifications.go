package handlers

import (
	"github.com/chachabrian/hilot-backend/internal/middleware"
	"github.com/chachabrian/hilot-backend/internal/repository"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RegisterFCMToken stores the device token booking pushes are sent to.
func RegisterFCMToken(repo repository.Repository, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			FCMToken string `json:"fcmToken" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		if !setFCMToken(c, repo, log, input.FCMToken) {
			return
		}
		c.JSON(200, gin.H{"message": "FCM token registered successfully"})
	}
}

// RemoveFCMToken removes a user's FCM token
func RemoveFCMToken(repo repository.Repository, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !setFCMToken(c, repo, log, "") {
			return
		}
		c.JSON(200, gin.H{"message": "FCM token removed successfully"})
	}
}

func setFCMToken(c *gin.Context, repo repository.Repository, log *logrus.Logger, token string) bool {
	ctx := c.Request.Context()
	user, err := repo.FindUserByID(ctx, c.GetUint(middleware.KeyUserID))
	if err != nil {
		c.JSON(404, gin.H{"error": "User not found"})
		return false
	}

	user.FCMToken = token
	if err := repo.SaveUser(ctx, user); err != nil {
		log.WithError(err).WithField("user_id", user.ID).Error("failed to save FCM token")
		c.JSON(500, gin.H{"error": "Failed to update FCM token"})
		return false
	}
	return true
}
