// Package usecase implements the business logic for the users feature.
package usecase

import "errors"

var (
	// ErrForbidden is returned when the acting user may not touch the target user.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidRole is returned for a role outside user/admin.
	ErrInvalidRole = errors.New("invalid role")
)
