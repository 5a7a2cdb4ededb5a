package usecase

import (
	"context"
	"fmt"

	"acquisitions/internal/feature/users/domain/entity"
)

// UserRepository abstracts the persistence layer for user entities.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type UserRepository interface {
	// Create persists a new user. A duplicate email yields domain.ErrEmailAlreadyExists.
	Create(ctx context.Context, user *entity.User) error

	// FindByEmail returns domain.ErrUserNotFound when no user matches.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByID returns domain.ErrUserNotFound when no user matches.
	FindByID(ctx context.Context, id uint) (*entity.User, error)

	List(ctx context.Context) ([]entity.User, error)

	// Update writes name, email and role of user.
	Update(ctx context.Context, user *entity.User) error

	Delete(ctx context.Context, id uint) error
}

// Actor is the authenticated user performing a request.
type Actor struct {
	ID   uint
	Role entity.Role
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == entity.RoleAdmin
}

// UpdateInput carries the fields a caller wants to change; nil means unchanged.
type UpdateInput struct {
	Name  *string
	Email *string
	Role  *entity.Role
}

// UsersUsecase provides business logic for user management.
type UsersUsecase struct {
	repo UserRepository
}

// NewUsersUsecase creates a new UsersUsecase with the given repository.
func NewUsersUsecase(r UserRepository) *UsersUsecase {
	return &UsersUsecase{repo: r}
}

// ListUsers returns all users.
func (u *UsersUsecase) ListUsers(ctx context.Context) ([]entity.User, error) {
	return u.repo.List(ctx)
}

// GetUser returns the user with the given ID.
func (u *UsersUsecase) GetUser(ctx context.Context, id uint) (*entity.User, error) {
	return u.repo.FindByID(ctx, id)
}

// UpdateUser applies in to the user with the given ID.
// Users may only update themselves; only admins may update others or change a role.
func (u *UsersUsecase) UpdateUser(ctx context.Context, actor Actor, id uint, in UpdateInput) (*entity.User, error) {
	if actor.ID != id && !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	if in.Role != nil {
		if !actor.IsAdmin() {
			return nil, ErrForbidden
		}
		if !in.Role.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidRole, *in.Role)
		}
	}

	user, err := u.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		user.Name = *in.Name
	}
	if in.Email != nil {
		user.Email = *in.Email
	}
	if in.Role != nil {
		user.Role = *in.Role
	}

	if err := u.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser removes the user with the given ID.
// Users may delete their own account; admins may delete any account.
func (u *UsersUsecase) DeleteUser(ctx context.Context, actor Actor, id uint) error {
	if actor.ID != id && !actor.IsAdmin() {
		return ErrForbidden
	}
	return u.repo.Delete(ctx, id)
}
