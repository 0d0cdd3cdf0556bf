package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	derr "github.com/ozzus/fulbito/internal/domain/errors"
	"github.com/ozzus/fulbito/internal/domain/models"
	"github.com/redis/go-redis/v9"
)

const (
	playersKey = "club:players"
	matchesKey = "club:matches"
)

type ClubCache struct {
	redis *redis.Client
}

func NewClubCache(redis *redis.Client) *ClubCache {
	return &ClubCache{redis: redis}
}

func (c *ClubCache) GetPlayers(ctx context.Context) ([]models.Player, error) {
	var players []models.Player
	if err := c.get(ctx, playersKey, &players); err != nil {
		return nil, err
	}
	return players, nil
}

func (c *ClubCache) SetPlayers(ctx context.Context, players []models.Player, ttl time.Duration) error {
	return c.set(ctx, playersKey, players, ttl)
}

func (c *ClubCache) GetMatches(ctx context.Context) ([]models.Match, error) {
	var matches []models.Match
	if err := c.get(ctx, matchesKey, &matches); err != nil {
		return nil, err
	}
	return matches, nil
}

func (c *ClubCache) SetMatches(ctx context.Context, matches []models.Match, ttl time.Duration) error {
	return c.set(ctx, matchesKey, matches, ttl)
}

func (c *ClubCache) InvalidatePlayers(ctx context.Context) error {
	if err := c.redis.Del(ctx, playersKey).Err(); err != nil {
		return fmt.Errorf("redis del players: %w", err)
	}
	return nil
}

func (c *ClubCache) InvalidateMatches(ctx context.Context) error {
	if err := c.redis.Del(ctx, matchesKey).Err(); err != nil {
		return fmt.Errorf("redis del matches: %w", err)
	}
	return nil
}

func (c *ClubCache) get(ctx context.Context, key string, dst any) error {
	data, err := c.redis.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return derr.ErrCacheMiss
		}
		return fmt.Errorf("redis get %s: %w", key, err)
	}

	if err := json.Unmarshal([]byte(data), dst); err != nil {
		return fmt.Errorf("unmarshal cached %s: %w", key, err)
	}
	return nil
}

func (c *ClubCache) set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s for cache: %w", key, err)
	}

	if err := c.redis.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
