package domain

import "time"

const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// ValidRole reports whether r is one of the known roles.
func ValidRole(r string) bool {
	return r == RoleAdmin || r == RoleUser
}

// User models an authenticated actor in the system.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

// Identity is what a verified session token asserts about its bearer.
// Role is a hint only; admin checks re-read the role from the store.
type Identity struct {
	UserID string
	Email  string
	Role   string
}

// Session is the result of a successful login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *User
}
