package model

import "time"

// Role determines what an operator account may do.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// User is an operator account.
type User struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // never expose password hash
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// IsAdmin reports whether the account holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
