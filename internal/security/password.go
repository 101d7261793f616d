package security

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidHashFormat means a stored hash could not be parsed at all.
// This points at data corruption, not a wrong password.
var ErrInvalidHashFormat = errors.New("stored password hash is malformed")

// Hasher hashes and verifies passwords with bcrypt. The cost is fixed
// per deployment; zero means bcrypt's default.
type Hasher struct {
	cost int
}

func NewHasher(cost int) *Hasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	return &Hasher{cost: cost}
}

// HashPassword hashes a plain text password. The resulting string embeds
// algorithm, cost and salt, so verification needs nothing else.
func (h *Hasher) HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)

	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// CheckPassword compares a stored bcrypt hash against a plaintext password.
// A wrong password returns bcrypt.ErrMismatchedHashAndPassword; anything
// else means the stored hash itself is broken.
func (h *Hasher) CheckPassword(hash, plain string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))

	if err == nil || errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return err
	}

	return fmt.Errorf("%w: %v", ErrInvalidHashFormat, err)
}
