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

// defaultPerformance is recorded for a participant sent without a rating.
// Zero is outside the rating scale, so it reads as "not sent".
const defaultPerformance = 5.0

type MatchService struct {
	log      *zap.Logger
	repo     ports.MatchRepository
	cache    ports.ClubCache
	cacheTTL time.Duration
}

func NewMatchService(log *zap.Logger, repo ports.MatchRepository, cache ports.ClubCache, cacheTTL time.Duration) *MatchService {
	if log == nil {
		log = zap.NewNop()
	}
	return &MatchService{
		log:      log,
		repo:     repo,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

// ListMatches returns the match history, most recent first.
func (s *MatchService) ListMatches(ctx context.Context) ([]models.Match, error) {
	const op = "service.ListMatches"
	ctx, span := otel.Tracer(tracerName).Start(ctx, op)
	defer span.End()

	logger := s.log.With(zap.String("op", op))

	if s.cache != nil {
		matches, err := s.cache.GetMatches(ctx)
		if err == nil {
			logger.Debug("matches loaded from redis cache")
			span.AddEvent("matches.cache.hit")
			return matches, nil
		}
		if !errors.Is(err, derr.ErrCacheMiss) {
			logger.Warn("redis cache read failed", zap.Error(err))
			span.RecordError(err)
		}
	}

	matches, err := s.repo.ListMatches(ctx)
	if err != nil {
		span.SetStatus(otelcodes.Error, "list matches failed")
		return nil, fmt.Errorf("%s: list matches from repo: %w", op, err)
	}

	if s.cache != nil {
		if err := s.cache.SetMatches(ctx, matches, s.cacheTTL); err != nil {
			logger.Warn("redis cache write failed", zap.Error(err))
		}
	}

	span.SetAttributes(attribute.Int("matches.count", len(matches)))
	return matches, nil
}

func (s *MatchService) GetMatch(ctx context.Context, id models.MatchID) (models.Match, error) {
	const op = "service.GetMatch"

	if strings.TrimSpace(string(id)) == "" {
		return models.Match{}, derr.ErrMatchNotFound
	}

	match, err := s.repo.GetMatch(ctx, id)
	if err != nil {
		return models.Match{}, fmt.Errorf("%s: %w", op, err)
	}
	return match, nil
}

func (s *MatchService) CreateMatch(ctx context.Context, match models.Match) (models.MatchID, error) {
	const op = "service.CreateMatch"
	ctx, span := otel.Tracer(tracerName).Start(ctx, op)
	defer span.End()

	date, err := models.ParseDate(match.Date)
	if err != nil {
		return "", fmt.Errorf("%s: %w: %v", op, derr.ErrInvalidMatch, err)
	}
	match.Date = date

	format, err := models.ParseFormat(string(match.Format))
	if err != nil {
		return "", fmt.Errorf("%s: %w: %v", op, derr.ErrInvalidMatch, err)
	}
	match.Format = format
	match.Name = strings.TrimSpace(match.Name)

	if err := validateScores(match.TeamAScore, match.TeamBScore); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	match.TeamA = withDefaultPerformance(match.TeamA)
	match.TeamB = withDefaultPerformance(match.TeamB)
	if err := validateRosters(format, match.TeamA, match.TeamB); err != nil {
		span.SetStatus(otelcodes.Error, "invalid rosters")
		return "", fmt.Errorf("%s: %w", op, err)
	}

	id, err := s.repo.CreateMatch(ctx, match)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("%s: create match: %w", op, err)
	}

	s.invalidate(ctx, op, match.ShirtsResponsibleID != "")
	span.SetAttributes(attribute.String("match.id", string(id)))
	s.log.Info("match created",
		zap.String("op", op),
		zap.String("match_id", string(id)),
		zap.String("date", match.Date),
		zap.String("type", string(match.Format)),
	)
	return id, nil
}

// UpdateMatch applies the set fields. Supplied teams replace the stored
// participants.
func (s *MatchService) UpdateMatch(ctx context.Context, id models.MatchID, update models.MatchUpdate) error {
	const op = "service.UpdateMatch"
	ctx, span := otel.Tracer(tracerName).Start(ctx, op)
	defer span.End()
	span.SetAttributes(attribute.String("match.id", string(id)))

	if update.Date != nil {
		date, err := models.ParseDate(*update.Date)
		if err != nil {
			return fmt.Errorf("%s: %w: %v", op, derr.ErrInvalidMatch, err)
		}
		update.Date = &date
	}
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		update.Name = &name
	}

	needsCurrent := update.ReplaceTeams || update.TeamAScore != nil || update.TeamBScore != nil || update.Format != nil
	if needsCurrent {
		current, err := s.repo.GetMatch(ctx, id)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		format := current.Format
		if update.Format != nil {
			parsed, err := models.ParseFormat(string(*update.Format))
			if err != nil {
				return fmt.Errorf("%s: %w: %v", op, derr.ErrInvalidMatch, err)
			}
			update.Format = &parsed
			format = parsed
		}

		scoreA, scoreB := current.TeamAScore, current.TeamBScore
		if update.TeamAScore != nil {
			scoreA = *update.TeamAScore
		}
		if update.TeamBScore != nil {
			scoreB = *update.TeamBScore
		}
		if err := validateScores(scoreA, scoreB); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		teamA, teamB := current.TeamA, current.TeamB
		if update.ReplaceTeams {
			update.TeamA = withDefaultPerformance(update.TeamA)
			update.TeamB = withDefaultPerformance(update.TeamB)
			teamA, teamB = update.TeamA, update.TeamB
		}
		if err := validateRosters(format, teamA, teamB); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := s.repo.UpdateMatch(ctx, id, update); err != nil {
		span.RecordError(err)
		return fmt.Errorf("%s: %w", op, err)
	}

	s.invalidate(ctx, op, update.ShirtsResponsibleID != nil)
	s.log.Info("match updated", zap.String("op", op), zap.String("match_id", string(id)))
	return nil
}

func (s *MatchService) DeleteMatch(ctx context.Context, id models.MatchID) error {
	const op = "service.DeleteMatch"
	ctx, span := otel.Tracer(tracerName).Start(ctx, op)
	defer span.End()

	if err := s.repo.DeleteMatch(ctx, id); err != nil {
		span.RecordError(err)
		return fmt.Errorf("%s: %w", op, err)
	}

	s.invalidate(ctx, op, true)
	s.log.Info("match deleted", zap.String("op", op), zap.String("match_id", string(id)))
	return nil
}

// invalidate drops the cached match list and, when shirt duty counts may
// have moved, the player list too.
func (s *MatchService) invalidate(ctx context.Context, op string, players bool) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateMatches(ctx); err != nil {
		s.log.Warn("redis cache invalidation failed", zap.String("op", op), zap.Error(err))
	}
	if !players {
		return
	}
	if err := s.cache.InvalidatePlayers(ctx); err != nil {
		s.log.Warn("redis cache invalidation failed", zap.String("op", op), zap.Error(err))
	}
}

func validateScores(a, b int) error {
	if a < 0 || b < 0 {
		return fmt.Errorf("%w: scores must not be negative", derr.ErrInvalidMatch)
	}
	return nil
}

// validateRosters checks that each side fits the format and nobody appears
// twice.
func validateRosters(format models.Format, teamA, teamB []models.Participation) error {
	perTeam, err := format.PlayersPerTeam()
	if err != nil {
		return fmt.Errorf("%w: %v", derr.ErrInvalidMatch, err)
	}
	if len(teamA) > perTeam || len(teamB) > perTeam {
		return fmt.Errorf("%w: %s allows at most %d players per team", derr.ErrInvalidMatch, format, perTeam)
	}

	seen := make(map[models.PlayerID]struct{}, len(teamA)+len(teamB))
	for _, team := range [][]models.Participation{teamA, teamB} {
		for _, p := range team {
			if strings.TrimSpace(string(p.PlayerID)) == "" {
				return fmt.Errorf("%w: participant id is required", derr.ErrInvalidMatch)
			}
			if _, dup := seen[p.PlayerID]; dup {
				return fmt.Errorf("%w: player %s appears more than once", derr.ErrInvalidMatch, p.PlayerID)
			}
			seen[p.PlayerID] = struct{}{}

			if p.Goals < 0 {
				return fmt.Errorf("%w: goals must not be negative", derr.ErrInvalidMatch)
			}
			if p.Performance < minRating || p.Performance > maxRating {
				return fmt.Errorf("%w: performance must be between 1 and 10, got %v", derr.ErrInvalidMatch, p.Performance)
			}
		}
	}
	return nil
}

func withDefaultPerformance(team []models.Participation) []models.Participation {
	out := make([]models.Participation, len(team))
	for i, p := range team {
		if p.Performance == 0 {
			p.Performance = defaultPerformance
		}
		out[i] = p
	}
	return out
}
