package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ozzus/fulbito/internal/domain/models"
	"github.com/ozzus/fulbito/internal/infrastructures/db/model"
	"github.com/redis/go-redis/v9"
)

// TokenRepository keeps issued sessions and the logout blacklist. Keys expire
// with the token, so the blacklist never outgrows the set of live tokens.
type TokenRepository struct {
	redis *redis.Client
	now   func() time.Time
}

func NewTokenRepository(redis *redis.Client) *TokenRepository {
	return &TokenRepository{redis: redis, now: time.Now}
}

func (r *TokenRepository) SaveSession(ctx context.Context, session models.Session) error {
	ttl := r.remaining(session)
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(model.NewSessionData(session, r.now()))
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	pipe := r.redis.TxPipeline()
	pipe.Set(ctx, sessionKey(session.TokenID), data, ttl)
	pipe.SAdd(ctx, userSessionsKey(session.UserID), session.TokenID)
	pipe.Expire(ctx, userSessionsKey(session.UserID), ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis save session: %w", err)
	}
	return nil
}

func (r *TokenRepository) RevokeSession(ctx context.Context, session models.Session) error {
	ttl := r.remaining(session)

	pipe := r.redis.TxPipeline()
	pipe.Del(ctx, sessionKey(session.TokenID))
	pipe.SRem(ctx, userSessionsKey(session.UserID), session.TokenID)
	if ttl > 0 {
		pipe.Set(ctx, blacklistKey(session.TokenID), string(session.UserID), ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis revoke session: %w", err)
	}
	return nil
}

func (r *TokenRepository) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	exists, err := r.redis.Exists(ctx, blacklistKey(tokenID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check blacklist: %w", err)
	}
	return exists == 1, nil
}

func (r *TokenRepository) remaining(session models.Session) time.Duration {
	return session.ExpiresAt.Sub(r.now())
}

func sessionKey(tokenID string) string {
	return fmt.Sprintf("session:%s", tokenID)
}

func userSessionsKey(userID models.UserID) string {
	return fmt.Sprintf("user_sessions:%s", userID)
}

func blacklistKey(tokenID string) string {
	return fmt.Sprintf("blacklist:%s", tokenID)
}
