package user

import "errors"

// ErrNotFound is returned when no user matches the lookup.
var ErrNotFound = errors.New("user not found")

type User struct {
	ID           int64
	Username     string
	PasswordHash string
}
