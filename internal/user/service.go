package user

import (
	"context"
	"errors"

	"bookreview/internal/apperr"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register stores a new user with an already hashed password. The lookup
// before the insert is not atomic; the unique constraint on username settles
// concurrent registrations and the repository reports that as the same
// conflict.
func (s *Service) Register(ctx context.Context, username, passwordHash string) (User, error) {
	_, err := s.repo.GetByUsername(ctx, username)
	if err == nil {
		return User{}, apperr.Conflict("User %s is already registered.", username)
	}
	if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}

	newUser := &User{
		Username:     username,
		PasswordHash: passwordHash,
	}
	if err := s.repo.Create(ctx, newUser); err != nil {
		return User{}, err
	}
	return *newUser, nil
}

func (s *Service) GetByUsername(ctx context.Context, username string) (User, error) {
	return s.repo.GetByUsername(ctx, username)
}
