package models

import "time"

type UserID string

type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

type User struct {
	ID           UserID
	Username     string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// Session is the authenticated identity carried by a request.
type Session struct {
	TokenID   string
	UserID    UserID
	Username  string
	Role      Role
	ExpiresAt time.Time
}

func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}
