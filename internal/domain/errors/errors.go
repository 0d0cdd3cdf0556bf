package errors

import "errors"

var (
	ErrPlayerNotFound     = errors.New("player not found")
	ErrMatchNotFound      = errors.New("match not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidAccount     = errors.New("invalid account")
	ErrInvalidPlayer      = errors.New("invalid player")
	ErrInvalidMatch       = errors.New("invalid match")
	ErrInvalidSelection   = errors.New("invalid team selection")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrCacheMiss          = errors.New("cache miss")
	ErrTokenRevoked       = errors.New("token revoked")
)
