package domain

import "time"

// UserRole separates end-users from support staff.
type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAgent UserRole = "agent"
	RoleAdmin UserRole = "admin"
)

// IsStaff reports whether the role grants access to other users' tickets.
func (r UserRole) IsStaff() bool {
	return r == RoleAgent || r == RoleAdmin
}

// User is the principal for both ticket requesters and support staff.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         UserRole
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
