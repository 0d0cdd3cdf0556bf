package ports

import (
	"context"
	"time"

	"github.com/ozzus/fulbito/internal/domain/models"
)

type PlayerRepository interface {
	ListPlayers(ctx context.Context) ([]models.Player, error)
	GetPlayer(ctx context.Context, id models.PlayerID) (models.Player, error)
	CreatePlayer(ctx context.Context, player models.Player) (models.Player, error)
	UpdatePlayer(ctx context.Context, id models.PlayerID, update models.PlayerUpdate) (models.Player, error)
	DeletePlayer(ctx context.Context, id models.PlayerID) error
}

type MatchRepository interface {
	ListMatches(ctx context.Context) ([]models.Match, error)
	GetMatch(ctx context.Context, id models.MatchID) (models.Match, error)
	CreateMatch(ctx context.Context, match models.Match) (models.MatchID, error)
	UpdateMatch(ctx context.Context, id models.MatchID, update models.MatchUpdate) error
	DeleteMatch(ctx context.Context, id models.MatchID) error
}

// ClubCache holds the player and match lists between mutations.
type ClubCache interface {
	GetPlayers(ctx context.Context) ([]models.Player, error)
	SetPlayers(ctx context.Context, players []models.Player, ttl time.Duration) error
	GetMatches(ctx context.Context) ([]models.Match, error)
	SetMatches(ctx context.Context, matches []models.Match, ttl time.Duration) error
	InvalidatePlayers(ctx context.Context) error
	InvalidateMatches(ctx context.Context) error
}
