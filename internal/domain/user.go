package domain

import (
	"context"
	"time"
)

// Role determines a user's visibility scope: regular users see only
// their own tasks, admins see everything.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User represents a registered account. Email is stored lowercased and
// is unique case-insensitively. PasswordHash is opaque to everything
// except the auth service and is never serialized.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Caller is the identity recovered from a verified request token.
// It carries no database-backed state; token verification alone
// produces it.
type Caller struct {
	UserID int64
	Role   Role
}

// IsAdmin reports whether the caller has the admin role.
func (c Caller) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}
