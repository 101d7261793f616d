package user

import (
	"errors"
	"time"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already registered")
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID            string    `json:"id"`
	LegacySeq     int64     `json:"-"` // insertion ordinal, kept for the bootstrap-admin check
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"` // never expose hash in JSON
	Gender        string    `json:"gender,omitempty"`
	DateOfBirth   string    `json:"dateOfBirth,omitempty"` // YYYY-MM-DD
	EmailVerified bool      `json:"emailVerified"`
	Role          string    `json:"role"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Profile is the optional attributes collected at signup.
type Profile struct {
	Gender      string
	DateOfBirth string
}
