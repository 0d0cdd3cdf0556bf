package handlers

import (
	"context"

	"github.com/ozzus/fulbito/internal/domain/models"
)

type sessionKey struct{}

func WithSession(ctx context.Context, s models.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

func SessionFrom(ctx context.Context) (models.Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(models.Session)
	return s, ok
}
