// Package usecase implements the business logic for the auth feature.
package usecase

import "errors"

var (
	// ErrInvalidCredentials is returned for an unknown email or a wrong password.
	// The two cases are indistinguishable on purpose.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrWeakPassword is returned when a password does not meet the minimum length.
	ErrWeakPassword = errors.New("password too short")

	// ErrInvalidRole is returned for a role outside user/admin.
	ErrInvalidRole = errors.New("invalid role")
)
