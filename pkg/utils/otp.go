package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const (
	OTPExpiration = 15 * time.Minute
	// OTPMaxAttempts is how many wrong guesses burn a code.
	OTPMaxAttempts = 5
	otpDigits      = 6
)

var otpSpace = big.NewInt(1_000_000)

// GenerateOTP returns a random 6-digit code.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, otpSpace)
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%0*d", otpDigits, n.Int64()), nil
}
