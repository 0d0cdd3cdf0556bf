package service

import (
	"context"
	"fmt"

	derr "github.com/ozzus/fulbito/internal/domain/errors"
	"github.com/ozzus/fulbito/internal/domain/models"
	"github.com/ozzus/fulbito/internal/domain/stats"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

const unknownPlayerName = "Unknown"

type PlayerStats struct {
	models.PlayerStatRow
	Name               string        `json:"name"`
	AveragePerformance float64       `json:"averagePerformance"`
	GoalsPerMatch      float64       `json:"goalsPerMatch"`
	WinRate            float64       `json:"winRate"`
	Streak             models.Streak `json:"streak"`
	StreakLabel        string        `json:"streakLabel"`
}

type PlayerProfile struct {
	Player  models.Player  `json:"player"`
	Stats   PlayerStats    `json:"stats"`
	Matches []models.Match `json:"matches"`
}

type StatsService struct {
	log     *zap.Logger
	players PlayerLister
	matches MatchLister
}

func NewStatsService(log *zap.Logger, players PlayerLister, matches MatchLister) *StatsService {
	if log == nil {
		log = zap.NewNop()
	}
	return &StatsService{log: log, players: players, matches: matches}
}

// PlayerTable returns one row per player with match history, top scorers
// first.
func (s *StatsService) PlayerTable(ctx context.Context) ([]PlayerStats, error) {
	const op = "service.PlayerTable"
	ctx, span := otel.Tracer(tracerName).Start(ctx, op)
	defer span.End()

	players, matches, err := s.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	names := lo.Associate(players, func(p models.Player) (models.PlayerID, string) {
		return p.ID, p.Name
	})
	streaks := stats.AllCurrentStreaks(matches)

	rows := stats.ByGoals(stats.Aggregate(matches))
	table := lo.Map(rows, func(row models.PlayerStatRow, _ int) PlayerStats {
		name, ok := names[row.PlayerID]
		if !ok {
			name = unknownPlayerName
		}
		return newPlayerStats(row, name, streaks[row.PlayerID])
	})

	span.SetAttributes(attribute.Int("stats.rows", len(table)))
	return table, nil
}

// PlayerProfile returns a player's stats with the matches they played, most
// recent first. A player without matches gets a zero row.
func (s *StatsService) PlayerProfile(ctx context.Context, id models.PlayerID) (PlayerProfile, error) {
	const op = "service.PlayerProfile"
	ctx, span := otel.Tracer(tracerName).Start(ctx, op)
	defer span.End()

	players, matches, err := s.load(ctx)
	if err != nil {
		return PlayerProfile{}, fmt.Errorf("%s: %w", op, err)
	}

	player, ok := lo.Find(players, func(p models.Player) bool { return p.ID == id })
	if !ok {
		return PlayerProfile{}, fmt.Errorf("%s: %w", op, derr.ErrPlayerNotFound)
	}

	played := lo.Filter(matches, func(m models.Match, _ int) bool {
		_, in := m.Side(id)
		return in
	})

	row, ok := stats.Aggregate(played)[id]
	if !ok {
		row = models.PlayerStatRow{PlayerID: id}
	}

	return PlayerProfile{
		Player:  player,
		Stats:   newPlayerStats(row, player.Name, stats.CurrentStreak(matches, id)),
		Matches: played,
	}, nil
}

// Streaks returns the current streak of every player with match history.
func (s *StatsService) Streaks(ctx context.Context) (map[models.PlayerID]models.Streak, error) {
	const op = "service.Streaks"
	ctx, span := otel.Tracer(tracerName).Start(ctx, op)
	defer span.End()

	matches, err := s.matches.ListMatches(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("%s: list matches: %w", op, err)
	}

	streaks := stats.AllCurrentStreaks(matches)
	span.SetAttributes(attribute.Int("stats.streaks", len(streaks)))
	return streaks, nil
}

func (s *StatsService) load(ctx context.Context) ([]models.Player, []models.Match, error) {
	players, err := s.players.ListPlayers(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list players: %w", err)
	}
	matches, err := s.matches.ListMatches(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list matches: %w", err)
	}
	return players, matches, nil
}

func newPlayerStats(row models.PlayerStatRow, name string, streak models.Streak) PlayerStats {
	return PlayerStats{
		PlayerStatRow:      row,
		Name:               name,
		AveragePerformance: row.AveragePerformance(),
		GoalsPerMatch:      row.GoalsPerMatch(),
		WinRate:            row.WinRate(),
		Streak:             streak,
		StreakLabel:        streak.String(),
	}
}
