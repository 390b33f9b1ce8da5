package utils

import (
	"testing"
	"time"

	"github.com/chachabrian/hilot-backend/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	user := &models.User{Email: "ops@hilot.test", Role: models.RoleOps}
	user.ID = 12

	token, err := GenerateToken(user, "secret")
	require.NoError(t, err)

	claims, err := ValidateToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, uint(12), claims.ID)
	assert.Equal(t, models.RoleOps, claims.Role)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), claims.ExpiresAt.Time, time.Minute)

	_, err = ValidateToken(token, "other-secret")
	assert.Error(t, err)
}

func TestValidateTokenRejectsExpiredAndUnsigned(t *testing.T) {
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		ID:               1,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour))},
	})
	signed, err := expired.SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = ValidateToken(signed, "secret")
	assert.Error(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		ID:               1,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = ValidateToken(unsigned, "secret")
	assert.Error(t, err)
}
