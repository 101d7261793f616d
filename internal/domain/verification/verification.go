package verification

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound = errors.New("verification token not found")
	ErrExpired  = errors.New("verification token expired")
)

// Token is a single-use, time-limited credential proving control of an
// email address. At most one active token exists per user.
type Token struct {
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// NewToken returns 256 bits from the CSPRNG, url-safe encoded.
func NewToken() (string, error) {
	buf := make([]byte, 32)

	_, err := rand.Read(buf)

	if err != nil {
		return "", fmt.Errorf("generate verification token: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Link builds the url the email points at.
func Link(baseURL, token string) string {
	return baseURL + "/verify-email?token=" + token
}
