// Package entity defines the persisted shape of the users table.
package entity

import "time"

// Role is the authorization level of a user.
// The storage layer only accepts the values declared below.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the roles accepted by the users table.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User represents a row of the users table.
type User struct {
	// ID is assigned by the database and never changes afterwards.
	ID uint `gorm:"primaryKey;autoIncrement"`

	Name string `gorm:"size:256;not null"`

	// Email must be unique across all users; the unique index enforces it.
	Email string `gorm:"size:256;not null;uniqueIndex"`

	// Password holds the bcrypt hash, never the plaintext.
	Password string `gorm:"type:text;not null"`

	Role Role `gorm:"type:text;not null;default:user;check:role IN ('user','admin')"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`

	// UpdatedAt has no database trigger; GORM sets it on application writes.
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName returns the table name for GORM.
func (User) TableName() string {
	return "users"
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
