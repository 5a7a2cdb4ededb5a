// Package dto defines data transfer objects for the users feature's HTTP transport layer.
package dto

import (
	"time"

	"acquisitions/internal/feature/users/domain/entity"
)

// UserRes is the public representation of a user. The password hash is never exposed.
type UserRes struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUserRes converts an entity into its response form.
func NewUserRes(u *entity.User) UserRes {
	return UserRes{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// NewUserList converts a slice of entities, never returning nil.
func NewUserList(users []entity.User) []UserRes {
	out := make([]UserRes, 0, len(users))
	for i := range users {
		out = append(out, NewUserRes(&users[i]))
	}
	return out
}

// UpdateUserReq is the body of PUT /api/users/:id. Omitted fields stay unchanged.
type UpdateUserReq struct {
	Name  *string `json:"name" binding:"omitempty,min=1,max=256"`
	Email *string `json:"email" binding:"omitempty,email,max=256"`
	Role  *string `json:"role" binding:"omitempty,oneof=user admin"`
}

// Empty reports whether the request changes nothing.
func (r UpdateUserReq) Empty() bool {
	return r.Name == nil && r.Email == nil && r.Role == nil
}
