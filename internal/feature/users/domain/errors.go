// Package domain defines domain-level errors for the users feature.
package domain

import "errors"

var (
	// ErrUserNotFound indicates that no user matches the given criteria.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailAlreadyExists is returned when the unique index on email rejects a write.
	ErrEmailAlreadyExists = errors.New("email already exists")
)
