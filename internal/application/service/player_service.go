package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	derr "github.com/ozzus/fulbito/internal/domain/errors"
	"github.com/ozzus/fulbito/internal/domain/models"
	"github.com/ozzus/fulbito/internal/domain/ports"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

const tracerName = "fulbito/service"

const (
	minRating = 1.0
	maxRating = 10.0
)

type PlayerService struct {
	log      *zap.Logger
	repo     ports.PlayerRepository
	cache    ports.ClubCache
	cacheTTL time.Duration
}

func NewPlayerService(log *zap.Logger, repo ports.PlayerRepository, cache ports.ClubCache, cacheTTL time.Duration) *PlayerService {
	if log == nil {
		log = zap.NewNop()
	}
	return &PlayerService{
		log:      log,
		repo:     repo,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

// ListPlayers returns every player ordered by skill, strongest first.
func (s *PlayerService) ListPlayers(ctx context.Context) ([]models.Player, error) {
	const op = "service.ListPlayers"
	ctx, span := otel.Tracer(tracerName).Start(ctx, op)
	defer span.End()

	logger := s.log.With(zap.String("op", op))

	if s.cache != nil {
		players, err := s.cache.GetPlayers(ctx)
		if err == nil {
			logger.Debug("players loaded from redis cache")
			span.AddEvent("players.cache.hit")
			return players, nil
		}
		if !errors.Is(err, derr.ErrCacheMiss) {
			logger.Warn("redis cache read failed", zap.Error(err))
			span.RecordError(err)
		}
	}

	players, err := s.repo.ListPlayers(ctx)
	if err != nil {
		span.SetStatus(otelcodes.Error, "list players failed")
		return nil, fmt.Errorf("%s: list players from repo: %w", op, err)
	}

	if s.cache != nil {
		if err := s.cache.SetPlayers(ctx, players, s.cacheTTL); err != nil {
			logger.Warn("redis cache write failed", zap.Error(err))
		}
	}

	span.SetAttributes(attribute.Int("players.count", len(players)))
	return players, nil
}

func (s *PlayerService) GetPlayer(ctx context.Context, id models.PlayerID) (models.Player, error) {
	const op = "service.GetPlayer"

	if strings.TrimSpace(string(id)) == "" {
		return models.Player{}, derr.ErrPlayerNotFound
	}

	player, err := s.repo.GetPlayer(ctx, id)
	if err != nil {
		return models.Player{}, fmt.Errorf("%s: %w", op, err)
	}
	return player, nil
}

func (s *PlayerService) CreatePlayer(ctx context.Context, player models.Player) (models.Player, error) {
	const op = "service.CreatePlayer"
	ctx, span := otel.Tracer(tracerName).Start(ctx, op)
	defer span.End()

	player.Name = strings.TrimSpace(player.Name)
	player.Position = strings.TrimSpace(player.Position)
	if err := validatePlayer(player.Name, player.Skill, player.Attributes); err != nil {
		span.SetStatus(otelcodes.Error, "invalid player")
		return models.Player{}, fmt.Errorf("%s: %w", op, err)
	}
	if player.Attributes != nil {
		if avg, ok := player.Attributes.Average(); ok {
			player.Skill = avg
		}
	}
	player.ShirtDutiesCount = 0

	created, err := s.repo.CreatePlayer(ctx, player)
	if err != nil {
		span.RecordError(err)
		return models.Player{}, fmt.Errorf("%s: create player: %w", op, err)
	}

	s.invalidatePlayers(ctx, op)
	s.log.Info("player created", zap.String("op", op), zap.String("player_id", string(created.ID)))
	return created, nil
}

// UpdatePlayer applies the set fields. Supplying all four attributes
// recomputes skill as their average.
func (s *PlayerService) UpdatePlayer(ctx context.Context, id models.PlayerID, update models.PlayerUpdate) (models.Player, error) {
	const op = "service.UpdatePlayer"
	ctx, span := otel.Tracer(tracerName).Start(ctx, op)
	defer span.End()
	span.SetAttributes(attribute.String("player.id", string(id)))

	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		update.Name = &name
		if name == "" {
			return models.Player{}, fmt.Errorf("%s: %w: name is required", op, derr.ErrInvalidPlayer)
		}
	}
	if update.Skill != nil {
		if err := validateRating("skill", *update.Skill); err != nil {
			return models.Player{}, fmt.Errorf("%s: %w", op, err)
		}
	}
	if update.Attributes != nil {
		if err := validateAttributes(*update.Attributes); err != nil {
			return models.Player{}, fmt.Errorf("%s: %w", op, err)
		}
		if avg, ok := update.Attributes.Average(); ok {
			update.Skill = &avg
		}
	}

	updated, err := s.repo.UpdatePlayer(ctx, id, update)
	if err != nil {
		span.RecordError(err)
		return models.Player{}, fmt.Errorf("%s: %w", op, err)
	}

	s.invalidatePlayers(ctx, op)
	return updated, nil
}

// DeletePlayer also drops the player's participations, so both lists are
// invalidated.
func (s *PlayerService) DeletePlayer(ctx context.Context, id models.PlayerID) error {
	const op = "service.DeletePlayer"
	ctx, span := otel.Tracer(tracerName).Start(ctx, op)
	defer span.End()

	if err := s.repo.DeletePlayer(ctx, id); err != nil {
		span.RecordError(err)
		return fmt.Errorf("%s: %w", op, err)
	}

	s.invalidatePlayers(ctx, op)
	if s.cache != nil {
		if err := s.cache.InvalidateMatches(ctx); err != nil {
			s.log.Warn("redis cache invalidation failed", zap.String("op", op), zap.Error(err))
		}
	}
	s.log.Info("player deleted", zap.String("op", op), zap.String("player_id", string(id)))
	return nil
}

func (s *PlayerService) invalidatePlayers(ctx context.Context, op string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidatePlayers(ctx); err != nil {
		s.log.Warn("redis cache invalidation failed", zap.String("op", op), zap.Error(err))
	}
}

func validatePlayer(name string, skill models.Rating, attrs *models.Attributes) error {
	if name == "" {
		return fmt.Errorf("%w: name is required", derr.ErrInvalidPlayer)
	}
	if err := validateRating("skill", skill); err != nil {
		return err
	}
	if attrs != nil {
		return validateAttributes(*attrs)
	}
	return nil
}

func validateAttributes(a models.Attributes) error {
	fields := []struct {
		name string
		r    models.Rating
	}{
		{"physical", a.Physical},
		{"technical", a.Technical},
		{"tactical", a.Tactical},
		{"psychological", a.Psychological},
	}
	for _, f := range fields {
		if err := validateRating(f.name, f.r); err != nil {
			return err
		}
	}
	return nil
}

// validateRating accepts unknown or a known value on the 1 to 10 scale.
func validateRating(field string, r models.Rating) error {
	v, ok := r.Value()
	if !ok {
		return nil
	}
	if v < minRating || v > maxRating {
		return fmt.Errorf("%w: %s must be between 1 and 10, got %v", derr.ErrInvalidPlayer, field, v)
	}
	return nil
}
