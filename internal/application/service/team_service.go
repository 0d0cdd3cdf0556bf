package service

import (
	"context"
	"fmt"

	"github.com/ozzus/fulbito/internal/domain/balance"
	derr "github.com/ozzus/fulbito/internal/domain/errors"
	"github.com/ozzus/fulbito/internal/domain/models"
	"github.com/ozzus/fulbito/internal/domain/stats"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type PlayerLister interface {
	ListPlayers(ctx context.Context) ([]models.Player, error)
}

type MatchLister interface {
	ListMatches(ctx context.Context) ([]models.Match, error)
}

type TeamsResult struct {
	Format          models.Format         `json:"type"`
	TeamA           models.TeamAssignment `json:"teamA"`
	TeamB           models.TeamAssignment `json:"teamB"`
	WinProbabilityA int                   `json:"winProbabilityA"`
	WinProbabilityB int                   `json:"winProbabilityB"`
}

type ShirtDutySuggestion struct {
	PlayerID models.PlayerID   `json:"playerId"`
	Pool     []models.PlayerID `json:"pool"`
	MinCount int               `json:"minCount"`
}

type TeamService struct {
	log      *zap.Logger
	players  PlayerLister
	matches  MatchLister
	rnd      balance.RandomSource
	balancer *balance.Balancer
}

// NewTeamService draws jitter, shuffles and duty picks from rnd. A nil rnd
// uses the process-wide generator.
func NewTeamService(log *zap.Logger, players PlayerLister, matches MatchLister, rnd balance.RandomSource) *TeamService {
	if log == nil {
		log = zap.NewNop()
	}
	if rnd == nil {
		rnd = balance.GlobalSource{}
	}
	return &TeamService{
		log:      log,
		players:  players,
		matches:  matches,
		rnd:      rnd,
		balancer: balance.NewBalancer(rnd),
	}
}

// GenerateTeams balances exactly two full teams out of the selection.
func (s *TeamService) GenerateTeams(ctx context.Context, format string, selection []models.PlayerID) (TeamsResult, error) {
	const op = "service.GenerateTeams"
	ctx, span := otel.Tracer(tracerName).Start(ctx, op)
	defer span.End()

	f, perTeam, players, err := s.prepare(ctx, format, selection)
	if err != nil {
		return TeamsResult{}, fmt.Errorf("%s: %w", op, err)
	}

	res := s.balancer.BalanceTeams(players, perTeam)
	span.SetAttributes(attribute.Int("teams.per_team", perTeam))
	return s.result(op, f, res), nil
}

// RegenerateTeams shuffles the selection before balancing, so equal-skill
// players land in different orders than the last split.
func (s *TeamService) RegenerateTeams(ctx context.Context, format string, selection []models.PlayerID) (TeamsResult, error) {
	const op = "service.RegenerateTeams"
	ctx, span := otel.Tracer(tracerName).Start(ctx, op)
	defer span.End()

	f, perTeam, players, err := s.prepare(ctx, format, selection)
	if err != nil {
		return TeamsResult{}, fmt.Errorf("%s: %w", op, err)
	}

	shuffle(players, s.rnd)
	res := s.balancer.BalanceTeams(players, perTeam)
	return s.result(op, f, res), nil
}

// CompleteTeams keeps the manual picks and distributes the rest of the
// selection. With nothing left to place both teams must already be full and
// only the totals are computed.
func (s *TeamService) CompleteTeams(ctx context.Context, format string, selection, manualA, manualB []models.PlayerID) (TeamsResult, error) {
	const op = "service.CompleteTeams"
	ctx, span := otel.Tracer(tracerName).Start(ctx, op)
	defer span.End()

	f, perTeam, players, err := s.prepare(ctx, format, selection)
	if err != nil {
		return TeamsResult{}, fmt.Errorf("%s: %w", op, err)
	}
	if len(manualA) > perTeam || len(manualB) > perTeam {
		return TeamsResult{}, fmt.Errorf("%s: %w: a team can hold at most %d players", op, derr.ErrInvalidSelection, perTeam)
	}

	byID := make(map[models.PlayerID]models.Player, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}

	assigned := make(map[models.PlayerID]struct{}, len(manualA)+len(manualB))
	pick := func(ids []models.PlayerID) ([]models.Player, error) {
		out := make([]models.Player, 0, len(ids))
		for _, id := range ids {
			p, ok := byID[id]
			if !ok {
				return nil, fmt.Errorf("%w: player %s is not in the selection", derr.ErrInvalidSelection, id)
			}
			if _, dup := assigned[id]; dup {
				return nil, fmt.Errorf("%w: player %s is assigned twice", derr.ErrInvalidSelection, id)
			}
			assigned[id] = struct{}{}
			out = append(out, p)
		}
		return out, nil
	}

	teamA, err := pick(manualA)
	if err != nil {
		return TeamsResult{}, fmt.Errorf("%s: %w", op, err)
	}
	teamB, err := pick(manualB)
	if err != nil {
		return TeamsResult{}, fmt.Errorf("%s: %w", op, err)
	}

	unassigned := make([]models.Player, 0, len(players)-len(assigned))
	for _, p := range players {
		if _, ok := assigned[p.ID]; !ok {
			unassigned = append(unassigned, p)
		}
	}

	if len(unassigned) == 0 {
		if len(teamA) != perTeam || len(teamB) != perTeam {
			return TeamsResult{}, fmt.Errorf("%s: %w: each team needs exactly %d players", op, derr.ErrInvalidSelection, perTeam)
		}
		return s.result(op, f, balance.Result{
			TeamA: balance.Totals(teamA),
			TeamB: balance.Totals(teamB),
		}), nil
	}

	res := balance.BalanceRemaining(unassigned, teamA, teamB, perTeam)
	span.SetAttributes(attribute.Int("teams.unassigned", len(unassigned)))
	return s.result(op, f, res), nil
}

// SuggestShirtDuty picks who takes the shirts home after a match among the
// roster: players with history first, then the lowest duty count, then at
// random.
func (s *TeamService) SuggestShirtDuty(ctx context.Context, roster []models.PlayerID) (ShirtDutySuggestion, error) {
	const op = "service.SuggestShirtDuty"
	ctx, span := otel.Tracer(tracerName).Start(ctx, op)
	defer span.End()

	if len(roster) == 0 {
		return ShirtDutySuggestion{}, fmt.Errorf("%s: %w: roster is empty", op, derr.ErrInvalidSelection)
	}

	matches, err := s.matches.ListMatches(ctx)
	if err != nil {
		return ShirtDutySuggestion{}, fmt.Errorf("%s: list matches: %w", op, err)
	}
	players, err := s.players.ListPlayers(ctx)
	if err != nil {
		return ShirtDutySuggestion{}, fmt.Errorf("%s: list players: %w", op, err)
	}

	eligible := stats.EligiblePlayerIDs(roster, stats.PlayedBefore(matches))
	pool, minCount := stats.LeastAssignedPool(eligible, players)

	chosen := pool[pickIndex(s.rnd, len(pool))]
	s.log.Debug("shirt duty suggested",
		zap.String("op", op),
		zap.String("player_id", string(chosen)),
		zap.Int("pool_size", len(pool)),
		zap.Int("min_count", minCount),
	)
	return ShirtDutySuggestion{PlayerID: chosen, Pool: pool, MinCount: minCount}, nil
}

// prepare validates the format and resolves the selection to players in the
// order given.
func (s *TeamService) prepare(ctx context.Context, format string, selection []models.PlayerID) (models.Format, int, []models.Player, error) {
	f, err := models.ParseFormat(format)
	if err != nil {
		return "", 0, nil, fmt.Errorf("%w: %v", derr.ErrInvalidSelection, err)
	}
	perTeam, _ := f.PlayersPerTeam()

	if len(selection) != 2*perTeam {
		return "", 0, nil, fmt.Errorf("%w: %s needs exactly %d players, got %d", derr.ErrInvalidSelection, f, 2*perTeam, len(selection))
	}

	all, err := s.players.ListPlayers(ctx)
	if err != nil {
		return "", 0, nil, fmt.Errorf("list players: %w", err)
	}
	byID := make(map[models.PlayerID]models.Player, len(all))
	for _, p := range all {
		byID[p.ID] = p
	}

	players := make([]models.Player, 0, len(selection))
	seen := make(map[models.PlayerID]struct{}, len(selection))
	for _, id := range selection {
		if _, dup := seen[id]; dup {
			return "", 0, nil, fmt.Errorf("%w: player %s selected twice", derr.ErrInvalidSelection, id)
		}
		seen[id] = struct{}{}

		p, ok := byID[id]
		if !ok {
			return "", 0, nil, fmt.Errorf("%w: player %s does not exist", derr.ErrInvalidSelection, id)
		}
		players = append(players, p)
	}

	return f, perTeam, players, nil
}

func (s *TeamService) result(op string, f models.Format, res balance.Result) TeamsResult {
	probA, probB := balance.WinProbability(res.TeamA, res.TeamB)
	s.log.Info("teams built",
		zap.String("op", op),
		zap.String("type", string(f)),
		zap.Float64("skill_a", res.TeamA.TotalSkill),
		zap.Float64("skill_b", res.TeamB.TotalSkill),
		zap.Float64("physical_a", res.TeamA.TotalPhysical),
		zap.Float64("physical_b", res.TeamB.TotalPhysical),
	)
	return TeamsResult{
		Format:          f,
		TeamA:           res.TeamA,
		TeamB:           res.TeamB,
		WinProbabilityA: probA,
		WinProbabilityB: probB,
	}
}
