package entity

import (
	"time"
)

// UserStatus is the lifecycle label of an account
type UserStatus string

const (
	StatusActive   UserStatus = "Active"
	StatusInactive UserStatus = "Inactive"
)

// Valid reports whether s is one of the known statuses
func (s UserStatus) Valid() bool {
	switch s {
	case StatusActive, StatusInactive:
		return true
	}
	return false
}

// User is the aggregate root for user domain
// Password always holds the cipher output, never plaintext, and is never
// serialized.
type User struct {
	ID        int64      `json:"user_id"`
	Username  string     `json:"username"`
	Password  string     `json:"-"`
	Branch    string     `json:"branch"`
	Role      string     `json:"role"`
	Status    UserStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Claims is the set of user attributes carried by a session token
type Claims struct {
	Username string     `json:"username"`
	UserID   int64      `json:"user_id"`
	Role     string     `json:"role"`
	Branch   string     `json:"branch"`
	Status   UserStatus `json:"status"`
}

// ClaimsOf builds the token claims for u
func ClaimsOf(u *User) Claims {
	return Claims{
		Username: u.Username,
		UserID:   u.ID,
		Role:     u.Role,
		Branch:   u.Branch,
		Status:   u.Status,
	}
}
