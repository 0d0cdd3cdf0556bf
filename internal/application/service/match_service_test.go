package service

import (
	"context"
	"errors"
	"testing"
	"time"

	derr "github.com/ozzus/fulbito/internal/domain/errors"
	"github.com/ozzus/fulbito/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func validMatch() models.Match {
	return models.Match{
		Date:       "2024-05-10T21:00:00Z",
		Format:     " 5V5 ",
		Name:       " Viernes ",
		TeamAScore: 3,
		TeamBScore: 2,
		TeamA: []models.Participation{
			{PlayerID: "a1", Goals: 2, Performance: 8},
			{PlayerID: "a2", Goals: 1},
		},
		TeamB: []models.Participation{
			{PlayerID: "b1", Goals: 2, Performance: 6.5},
		},
	}
}

func TestCreateMatch_NormalizesAndInvalidates(t *testing.T) {
	repo := &matchRepoMock{}
	cache := &cacheMock{}
	svc := NewMatchService(zap.NewNop(), repo, cache, time.Minute)

	id, err := svc.CreateMatch(context.Background(), validMatch())
	require.NoError(t, err)
	assert.Equal(t, models.MatchID("new-match"), id)

	got := repo.lastCreate
	assert.Equal(t, "2024-05-10", got.Date)
	assert.Equal(t, models.Format("5v5"), got.Format)
	assert.Equal(t, "Viernes", got.Name)
	assert.Equal(t, 5.0, got.TeamA[1].Performance)
	assert.Equal(t, 1, cache.invMatchesCalls)
	assert.Equal(t, 0, cache.invPlayersCalls)
}

func TestCreateMatch_ResponsibleInvalidatesPlayers(t *testing.T) {
	repo := &matchRepoMock{}
	cache := &cacheMock{}
	svc := NewMatchService(zap.NewNop(), repo, cache, time.Minute)

	m := validMatch()
	m.ShirtsResponsibleID = "a1"
	_, err := svc.CreateMatch(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.invPlayersCalls)
}

func TestCreateMatch_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m *models.Match)
	}{
		{name: "bad date", mutate: func(m *models.Match) { m.Date = "10/05/2024" }},
		{name: "bad format", mutate: func(m *models.Match) { m.Format = "4v4" }},
		{name: "negative score", mutate: func(m *models.Match) { m.TeamBScore = -1 }},
		{name: "negative goals", mutate: func(m *models.Match) { m.TeamA[0].Goals = -1 }},
		{name: "performance out of range", mutate: func(m *models.Match) { m.TeamA[0].Performance = 11 }},
		{name: "player on both teams", mutate: func(m *models.Match) { m.TeamB[0].PlayerID = "a1" }},
		{name: "missing participant id", mutate: func(m *models.Match) { m.TeamB[0].PlayerID = "" }},
		{name: "team too large", mutate: func(m *models.Match) {
			for _, id := range []models.PlayerID{"a3", "a4", "a5", "a6"} {
				m.TeamA = append(m.TeamA, models.Participation{PlayerID: id, Performance: 5})
			}
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo := &matchRepoMock{}
			svc := NewMatchService(zap.NewNop(), repo, nil, time.Minute)

			m := validMatch()
			tc.mutate(&m)
			_, err := svc.CreateMatch(context.Background(), m)
			if !errors.Is(err, derr.ErrInvalidMatch) {
				t.Fatalf("expected ErrInvalidMatch, got %v", err)
			}
			if repo.createCalls != 0 {
				t.Fatalf("expected repo not to be called")
			}
		})
	}
}

func TestListMatches_CacheThrough(t *testing.T) {
	repo := &matchRepoMock{matches: []models.Match{{ID: "m1"}}}
	cache := &cacheMock{}
	svc := NewMatchService(zap.NewNop(), repo, cache, 2*time.Minute)

	_, err := svc.ListMatches(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, repo.listCalls)
	assert.Equal(t, 1, cache.setMatchesCalls)
	assert.Equal(t, 2*time.Minute, cache.lastTTL)

	cache.matches = repo.matches
	cache.matchesConfigured = true
	_, err = svc.ListMatches(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, repo.listCalls)
}

func TestUpdateMatch_ReplacesTeamsWithDefaults(t *testing.T) {
	repo := &matchRepoMock{matches: []models.Match{{ID: "m1", Format: "5v5", Date: "2024-01-01"}}}
	cache := &cacheMock{}
	svc := NewMatchService(zap.NewNop(), repo, cache, time.Minute)

	err := svc.UpdateMatch(context.Background(), "m1", models.MatchUpdate{
		ReplaceTeams: true,
		TeamA:        []models.Participation{{PlayerID: "a1"}},
		TeamB:        []models.Participation{{PlayerID: "b1", Goals: 1, Performance: 7}},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, repo.updateCalls)
	assert.Equal(t, 0, repo.lastUpdate.TeamA[0].Goals)
	assert.Equal(t, 5.0, repo.lastUpdate.TeamA[0].Performance)
	assert.Equal(t, 7.0, repo.lastUpdate.TeamB[0].Performance)
	assert.Equal(t, 1, cache.invMatchesCalls)
}

func TestUpdateMatch_FormatShrinkChecksStoredTeams(t *testing.T) {
	team := func(prefix string, n int) []models.Participation {
		out := make([]models.Participation, 0, n)
		for i := 0; i < n; i++ {
			out = append(out, models.Participation{PlayerID: models.PlayerID(prefix + string(rune('0'+i))), Performance: 5})
		}
		return out
	}
	repo := &matchRepoMock{matches: []models.Match{{
		ID:     "m1",
		Format: "7v7",
		TeamA:  team("a", 7),
		TeamB:  team("b", 7),
	}}}
	svc := NewMatchService(zap.NewNop(), repo, nil, time.Minute)

	format := models.Format("5v5")
	err := svc.UpdateMatch(context.Background(), "m1", models.MatchUpdate{Format: &format})
	if !errors.Is(err, derr.ErrInvalidMatch) {
		t.Fatalf("expected ErrInvalidMatch, got %v", err)
	}
	if repo.updateCalls != 0 {
		t.Fatalf("expected no write")
	}
}

func TestUpdateMatch_NotFound(t *testing.T) {
	repo := &matchRepoMock{}
	svc := NewMatchService(zap.NewNop(), repo, nil, time.Minute)

	score := 1
	err := svc.UpdateMatch(context.Background(), "missing", models.MatchUpdate{TeamAScore: &score})
	if !errors.Is(err, derr.ErrMatchNotFound) {
		t.Fatalf("expected ErrMatchNotFound, got %v", err)
	}
}

func TestUpdateMatch_ResponsibleOnlySkipsLookup(t *testing.T) {
	repo := &matchRepoMock{}
	cache := &cacheMock{}
	svc := NewMatchService(zap.NewNop(), repo, cache, time.Minute)

	responsible := models.PlayerID("p9")
	err := svc.UpdateMatch(context.Background(), "m1", models.MatchUpdate{ShirtsResponsibleID: &responsible})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.updateCalls)
	assert.Equal(t, 1, cache.invPlayersCalls)
}

func TestDeleteMatch(t *testing.T) {
	repo := &matchRepoMock{}
	cache := &cacheMock{}
	svc := NewMatchService(zap.NewNop(), repo, cache, time.Minute)

	require.NoError(t, svc.DeleteMatch(context.Background(), "m1"))
	assert.Equal(t, 1, cache.invMatchesCalls)
	assert.Equal(t, 1, cache.invPlayersCalls)

	repo.deleteErr = derr.ErrMatchNotFound
	err := svc.DeleteMatch(context.Background(), "m1")
	assert.True(t, errors.Is(err, derr.ErrMatchNotFound))
}
