package handlers

import (
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/chachabrian/hilot-backend/internal/models"
	"github.com/chachabrian/hilot-backend/internal/repository"
	"github.com/chachabrian/hilot-backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type RegisterInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	// OTP is the emailed code that proves ownership of a guest account.
	OTP string `json:"otp"`
}

// CodeSender delivers email verification codes.
type CodeSender interface {
	SendEmailVerificationOTP(to, name, code string) error
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func userResponse(u *models.User) gin.H {
	return gin.H{
		"id":    u.ID,
		"email": u.Email,
		"name":  u.Name,
		"phone": u.Phone,
		"role":  u.Role,
	}
}

// Register creates a client account. A passwordless account left behind by a
// guest checkout is claimed instead, keeping its bookings, but only with a
// verification code sent to its email.
func Register(repo repository.Repository, codes CodeSender, secret string, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input RegisterInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		ctx := c.Request.Context()
		email := models.NormalizeEmail(input.Email)

		user, err := repo.FindUserByEmail(ctx, email)
		switch {
		case err == nil && user.HasPassword():
			c.JSON(409, gin.H{"error": "Email already registered"})
			return
		case err == nil:
			if !claimGuest(c, repo, codes, user, input, log) {
				return
			}
		case errors.Is(err, repository.ErrNotFound):
			user = &models.User{
				Email: email,
				Name:  strings.TrimSpace(input.Name),
				Phone: strings.TrimSpace(input.Phone),
				Role:  models.RoleClient,
			}
			if err := user.SetPassword(input.Password); err != nil {
				c.JSON(500, gin.H{"error": "Failed to hash password"})
				return
			}
			if err := repo.CreateUser(ctx, user); err != nil {
				if errors.Is(err, repository.ErrDuplicate) {
					c.JSON(409, gin.H{"error": "Email already registered"})
					return
				}
				log.WithError(err).Error("failed to create user")
				c.JSON(500, gin.H{"error": "Failed to create user"})
				return
			}
		default:
			log.WithError(err).Error("failed to load user")
			c.JSON(500, gin.H{"error": "Failed to create user"})
			return
		}

		token, err := utils.GenerateToken(user, secret)
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to generate token"})
			return
		}

		log.WithFields(logrus.Fields{"user_id": user.ID}).Info("user registered")
		c.JSON(201, gin.H{"token": token, "user": userResponse(user)})
	}
}

// claimGuest sets a password on a guest account once the caller has shown
// the emailed code. Without a code it sends one and answers 403. It writes
// the response itself unless the claim succeeded.
func claimGuest(c *gin.Context, repo repository.Repository, codes CodeSender, user *models.User, input RegisterInput, log *logrus.Logger) bool {
	ctx := c.Request.Context()
	entry := log.WithField("user_id", user.ID)

	code := strings.TrimSpace(input.OTP)
	if code == "" {
		if codes == nil {
			c.JSON(503, gin.H{"error": "Email verification unavailable"})
			return false
		}
		otp, err := utils.GenerateOTP()
		if err != nil {
			entry.WithError(err).Error("failed to generate verification code")
			c.JSON(500, gin.H{"error": "Failed to generate verification OTP"})
			return false
		}
		err = repo.Transaction(ctx, func(tx repository.Repository) error {
			if err := tx.InvalidateOTPs(ctx, user.ID, models.OTPTypeEmailVerification); err != nil {
				return err
			}
			return tx.CreateOTP(ctx, &models.OTP{
				UserID:    user.ID,
				Code:      otp,
				Type:      models.OTPTypeEmailVerification,
				ExpiresAt: time.Now().Add(utils.OTPExpiration),
			})
		})
		if err != nil {
			entry.WithError(err).Error("failed to store verification code")
			c.JSON(500, gin.H{"error": "Failed to generate verification OTP"})
			return false
		}
		if err := codes.SendEmailVerificationOTP(user.Email, user.Name, otp); err != nil {
			entry.WithError(err).Error("failed to send verification email")
			c.JSON(500, gin.H{"error": "Failed to send verification email"})
			return false
		}
		entry.Info("guest account claim needs email verification")
		c.JSON(403, gin.H{
			"error":                "Email verification required",
			"message":              "Check your email for a verification code.",
			"requiresVerification": true,
			"email":                user.Email,
		})
		return false
	}

	record, err := repo.FindActiveOTP(ctx, user.ID, models.OTPTypeEmailVerification, time.Now())
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			entry.WithError(err).Error("failed to load verification code")
			c.JSON(500, gin.H{"error": "Failed to verify email"})
			return false
		}
		c.JSON(403, gin.H{"error": "Invalid or expired verification code"})
		return false
	}
	if subtle.ConstantTimeCompare([]byte(record.Code), []byte(code)) != 1 {
		record.Attempts++
		if record.Attempts >= utils.OTPMaxAttempts {
			record.Used = true
		}
		if err := repo.SaveOTP(ctx, record); err != nil {
			entry.WithError(err).Error("failed to record verification attempt")
		}
		entry.Warn("wrong verification code")
		c.JSON(403, gin.H{"error": "Invalid or expired verification code"})
		return false
	}

	if err := user.SetPassword(input.Password); err != nil {
		c.JSON(500, gin.H{"error": "Failed to hash password"})
		return false
	}
	if name := strings.TrimSpace(input.Name); name != "" {
		user.Name = name
	}
	if phone := strings.TrimSpace(input.Phone); phone != "" {
		user.Phone = phone
	}
	record.Used = true
	err = repo.Transaction(ctx, func(tx repository.Repository) error {
		if err := tx.SaveOTP(ctx, record); err != nil {
			return err
		}
		return tx.SaveUser(ctx, user)
	})
	if err != nil {
		entry.WithError(err).Error("failed to claim guest account")
		c.JSON(500, gin.H{"error": "Failed to create user"})
		return false
	}
	return true
}

func Login(repo repository.Repository, secret string, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input LoginInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		user, err := repo.FindUserByEmail(c.Request.Context(), models.NormalizeEmail(input.Email))
		if err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				log.WithError(err).Error("failed to load user")
			}
			c.JSON(401, gin.H{"error": "Invalid credentials"})
			return
		}

		// Guest accounts have no password until they register.
		if !user.HasPassword() || user.CheckPassword(input.Password) != nil {
			c.JSON(401, gin.H{"error": "Invalid credentials"})
			return
		}

		token, err := utils.GenerateToken(user, secret)
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to generate token"})
			return
		}

		c.JSON(200, gin.H{
			"token": token,
			"user":  userResponse(user),
		})
	}
}
