package ports

import (
	"context"
	"time"

	"github.com/ozzus/fulbito/internal/domain/models"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	GetUserByUsername(ctx context.Context, username string) (models.User, error)
}

type TokenRepository interface {
	SaveSession(ctx context.Context, session models.Session) error
	RevokeSession(ctx context.Context, session models.Session) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type TokenIssuer interface {
	Issue(user models.User, now time.Time) (token string, session models.Session, err error)
	Parse(token string) (models.Session, error)
}
