// Package auth signs operators in and issues their session tokens.
package auth

import (
	"context"
	"errors"
	"net/mail"
	"strings"
)

// DefaultDomain completes usernames typed without one.
const DefaultDomain = "marketchoice.com"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrUserDisabled       = errors.New("user disabled")
	ErrTooManyAttempts    = errors.New("too many attempts")
	ErrInvalidToken       = errors.New("invalid token")
)

// Principal is a signed-in operator.
type Principal struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name,omitempty"`
}

// Authenticator checks operator credentials.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (*Principal, error)
}

// NormalizeUsername turns "admin" into "admin@marketchoice.com" and validates
// the resulting address.
func NormalizeUsername(username string) (string, error) {
	u := strings.ToLower(strings.TrimSpace(username))
	if u == "" {
		return "", ErrInvalidEmail
	}
	if !strings.Contains(u, "@") {
		u += "@" + DefaultDomain
	}
	addr, err := mail.ParseAddress(u)
	if err != nil || addr.Address != u {
		return "", ErrInvalidEmail
	}
	return u, nil
}

// Message is the text shown to the operator for a sign-in error.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrInvalidEmail):
		return "Please enter a valid email address."
	case errors.Is(err, ErrUserDisabled):
		return "This account has been disabled."
	case errors.Is(err, ErrTooManyAttempts):
		return "Too many failed attempts. Please try again later."
	default:
		return "Invalid email or password."
	}
}
