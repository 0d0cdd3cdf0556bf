package handlers

import (
	"context"

	"github.com/ozzus/fulbito/internal/application/service"
	"github.com/ozzus/fulbito/internal/domain/models"
)

type PlayerService interface {
	ListPlayers(ctx context.Context) ([]models.Player, error)
	GetPlayer(ctx context.Context, id models.PlayerID) (models.Player, error)
	CreatePlayer(ctx context.Context, player models.Player) (models.Player, error)
	UpdatePlayer(ctx context.Context, id models.PlayerID, update models.PlayerUpdate) (models.Player, error)
	DeletePlayer(ctx context.Context, id models.PlayerID) error
}

type MatchService interface {
	ListMatches(ctx context.Context) ([]models.Match, error)
	GetMatch(ctx context.Context, id models.MatchID) (models.Match, error)
	CreateMatch(ctx context.Context, match models.Match) (models.MatchID, error)
	UpdateMatch(ctx context.Context, id models.MatchID, update models.MatchUpdate) error
	DeleteMatch(ctx context.Context, id models.MatchID) error
}

type TeamService interface {
	GenerateTeams(ctx context.Context, format string, selection []models.PlayerID) (service.TeamsResult, error)
	RegenerateTeams(ctx context.Context, format string, selection []models.PlayerID) (service.TeamsResult, error)
	CompleteTeams(ctx context.Context, format string, selection, manualA, manualB []models.PlayerID) (service.TeamsResult, error)
	SuggestShirtDuty(ctx context.Context, roster []models.PlayerID) (service.ShirtDutySuggestion, error)
}

type StatsService interface {
	PlayerTable(ctx context.Context) ([]service.PlayerStats, error)
	PlayerProfile(ctx context.Context, id models.PlayerID) (service.PlayerProfile, error)
	Streaks(ctx context.Context) (map[models.PlayerID]models.Streak, error)
}

type AuthService interface {
	Register(ctx context.Context, username, password string) (models.User, error)
	Login(ctx context.Context, username, password string) (service.LoginResult, error)
	Logout(ctx context.Context, session models.Session) error
	Authenticate(ctx context.Context, token string) (models.Session, error)
}
