package domain

import (
	"strings"
	"time"
)

const (
	RoleAdmin      = "admin"
	RoleTechnician = "technician"
)

// User models an authenticated actor in the system.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Identity is the subset of a user carried by an access token.
type Identity struct {
	UserID    string
	Email     string
	Name      string
	Role      string
	TokenID   string
	ExpiresAt time.Time
}

// IsAdmin reports whether the identity holds the admin role.
func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }

// NormalizeEmail lower-cases and trims an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidRole reports whether role is admin or technician.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleTechnician
}
