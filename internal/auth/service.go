package auth

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"bookreview/internal/apperr"
	"bookreview/internal/user"
)

const (
	// MaxUsernameLength matches users.username VARCHAR(15).
	MaxUsernameLength = 15
	// MaxPasswordBytes is the longest input bcrypt accepts.
	MaxPasswordBytes = 72
)

type Service struct {
	userService *user.Service
}

func NewService(userService *user.Service) *Service {
	return &Service{userService: userService}
}

// Register validates the credentials, hashes the password and stores the
// user. The plaintext password is never persisted.
func (s *Service) Register(ctx context.Context, username, password string) (int64, error) {
	username = strings.TrimSpace(username)
	switch {
	case username == "":
		return 0, apperr.Validation("Username required.")
	case password == "":
		return 0, apperr.Validation("Password required.")
	case utf8.RuneCountInString(username) > MaxUsernameLength:
		return 0, apperr.Validation("Username must be at most %d characters.", MaxUsernameLength)
	case len(password) > MaxPasswordBytes:
		return 0, apperr.Validation("Password must be at most %d bytes.", MaxPasswordBytes)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return 0, err
	}

	u, err := s.userService.Register(ctx, username, hash)
	if err != nil {
		return 0, err
	}
	return u.ID, nil
}

// Authenticate returns the user id for a matching username and password.
// Unknown usernames and wrong passwords fail with the same error.
func (s *Service) Authenticate(ctx context.Context, username, password string) (int64, error) {
	u, err := s.userService.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			VerifyPassword(dummyHash, password)
			return 0, apperr.ErrInvalidCredentials
		}
		return 0, err
	}
	if !VerifyPassword(u.PasswordHash, password) {
		return 0, apperr.ErrInvalidCredentials
	}
	return u.ID, nil
}
