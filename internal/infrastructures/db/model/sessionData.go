package model

import (
	"time"

	"github.com/ozzus/fulbito/internal/domain/models"
)

// SessionData is the redis record of an issued token.
type SessionData struct {
	TokenID   string        `json:"tokenId"`
	UserID    models.UserID `json:"userId"`
	Username  string        `json:"username"`
	Role      models.Role   `json:"role"`
	ExpiresAt time.Time     `json:"expiresAt"`
	IssuedAt  time.Time     `json:"issuedAt"`
}

func NewSessionData(s models.Session, issuedAt time.Time) SessionData {
	return SessionData{
		TokenID:   s.TokenID,
		UserID:    s.UserID,
		Username:  s.Username,
		Role:      s.Role,
		ExpiresAt: s.ExpiresAt.UTC(),
		IssuedAt:  issuedAt.UTC(),
	}
}
