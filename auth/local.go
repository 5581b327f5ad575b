package auth

import (
	"context"

	"golang.org/x/crypto/bcrypt"
)

// LocalAuthenticator accepts a single operator configured through the
// environment.
type LocalAuthenticator struct {
	email        string
	passwordHash []byte
}

func NewLocalAuthenticator(username, passwordHash string) (*LocalAuthenticator, error) {
	email, err := NormalizeUsername(username)
	if err != nil {
		return nil, err
	}
	if _, err := bcrypt.Cost([]byte(passwordHash)); err != nil {
		return nil, err
	}
	return &LocalAuthenticator{email: email, passwordHash: []byte(passwordHash)}, nil
}

func (a *LocalAuthenticator) Authenticate(ctx context.Context, username, password string) (*Principal, error) {
	email, err := NormalizeUsername(username)
	if err != nil {
		return nil, err
	}
	if email != a.email {
		// keep timing similar to a wrong password
		bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &Principal{UserID: email, Email: email}, nil
}
