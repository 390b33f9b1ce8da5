package handlers

import (
	"errors"
	"strings"

	"github.com/chachabrian/hilot-backend/internal/middleware"
	"github.com/chachabrian/hilot-backend/internal/repository"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// GetProfile retrieves the user's profile
func GetProfile(repo repository.Repository, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := repo.FindUserByID(c.Request.Context(), c.GetUint(middleware.KeyUserID))
		if err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				log.WithError(err).Error("failed to load user")
			}
			c.JSON(404, gin.H{"error": "User not found"})
			return
		}

		c.JSON(200, userResponse(user))
	}
}

// UpdateProfile updates the user's profile information
func UpdateProfile(repo repository.Repository, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Name  *string `json:"name"`
			Phone *string `json:"phone"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		ctx := c.Request.Context()
		user, err := repo.FindUserByID(ctx, c.GetUint(middleware.KeyUserID))
		if err != nil {
			c.JSON(404, gin.H{"error": "User not found"})
			return
		}

		if input.Name != nil {
			user.Name = strings.TrimSpace(*input.Name)
		}
		if input.Phone != nil {
			user.Phone = strings.TrimSpace(*input.Phone)
		}

		if err := repo.SaveUser(ctx, user); err != nil {
			log.WithError(err).WithField("user_id", user.ID).Error("failed to update profile")
			c.JSON(500, gin.H{"error": "Failed to update profile"})
			return
		}

		c.JSON(200, userResponse(user))
	}
}
