package service

import (
	"context"
	"time"

	derr "github.com/ozzus/fulbito/internal/domain/errors"
	"github.com/ozzus/fulbito/internal/domain/models"
)

type playerRepoMock struct {
	players     []models.Player
	listErr     error
	getErr      error
	createErr   error
	updateErr   error
	deleteErr   error
	listCalls   int
	createCalls int
	updateCalls int
	deleteCalls int
	lastCreate  models.Player
	lastUpdate  models.PlayerUpdate
}

func (m *playerRepoMock) ListPlayers(_ context.Context) ([]models.Player, error) {
	m.listCalls++
	return m.players, m.listErr
}

func (m *playerRepoMock) GetPlayer(_ context.Context, id models.PlayerID) (models.Player, error) {
	if m.getErr != nil {
		return models.Player{}, m.getErr
	}
	for _, p := range m.players {
		if p.ID == id {
			return p, nil
		}
	}
	return models.Player{}, derr.ErrPlayerNotFound
}

func (m *playerRepoMock) CreatePlayer(_ context.Context, player models.Player) (models.Player, error) {
	m.createCalls++
	m.lastCreate = player
	if m.createErr != nil {
		return models.Player{}, m.createErr
	}
	player.ID = "new-player"
	return player, nil
}

func (m *playerRepoMock) UpdatePlayer(_ context.Context, id models.PlayerID, update models.PlayerUpdate) (models.Player, error) {
	m.updateCalls++
	m.lastUpdate = update
	if m.updateErr != nil {
		return models.Player{}, m.updateErr
	}
	return models.Player{ID: id}, nil
}

func (m *playerRepoMock) DeletePlayer(_ context.Context, _ models.PlayerID) error {
	m.deleteCalls++
	return m.deleteErr
}

type matchRepoMock struct {
	matches     []models.Match
	listErr     error
	createErr   error
	updateErr   error
	deleteErr   error
	listCalls   int
	createCalls int
	updateCalls int
	deleteCalls int
	lastCreate  models.Match
	lastUpdate  models.MatchUpdate
}

func (m *matchRepoMock) ListMatches(_ context.Context) ([]models.Match, error) {
	m.listCalls++
	return m.matches, m.listErr
}

func (m *matchRepoMock) GetMatch(_ context.Context, id models.MatchID) (models.Match, error) {
	for _, match := range m.matches {
		if match.ID == id {
			return match, nil
		}
	}
	return models.Match{}, derr.ErrMatchNotFound
}

func (m *matchRepoMock) CreateMatch(_ context.Context, match models.Match) (models.MatchID, error) {
	m.createCalls++
	m.lastCreate = match
	if m.createErr != nil {
		return "", m.createErr
	}
	return "new-match", nil
}

func (m *matchRepoMock) UpdateMatch(_ context.Context, _ models.MatchID, update models.MatchUpdate) error {
	m.updateCalls++
	m.lastUpdate = update
	return m.updateErr
}

func (m *matchRepoMock) DeleteMatch(_ context.Context, _ models.MatchID) error {
	m.deleteCalls++
	return m.deleteErr
}

type cacheMock struct {
	players           []models.Player
	matches           []models.Match
	getErr            error
	setErr            error
	getPlayersCalls   int
	setPlayersCalls   int
	getMatchesCalls   int
	setMatchesCalls   int
	invPlayersCalls   int
	invMatchesCalls   int
	lastTTL           time.Duration
	invalidateErr     error
	playersConfigured bool
	matchesConfigured bool
}

func (m *cacheMock) GetPlayers(_ context.Context) ([]models.Player, error) {
	m.getPlayersCalls++
	if m.getErr != nil {
		return nil, m.getErr
	}
	if !m.playersConfigured {
		return nil, derr.ErrCacheMiss
	}
	return m.players, nil
}

func (m *cacheMock) SetPlayers(_ context.Context, _ []models.Player, ttl time.Duration) error {
	m.setPlayersCalls++
	m.lastTTL = ttl
	return m.setErr
}

func (m *cacheMock) GetMatches(_ context.Context) ([]models.Match, error) {
	m.getMatchesCalls++
	if m.getErr != nil {
		return nil, m.getErr
	}
	if !m.matchesConfigured {
		return nil, derr.ErrCacheMiss
	}
	return m.matches, nil
}

func (m *cacheMock) SetMatches(_ context.Context, _ []models.Match, ttl time.Duration) error {
	m.setMatchesCalls++
	m.lastTTL = ttl
	return m.setErr
}

func (m *cacheMock) InvalidatePlayers(_ context.Context) error {
	m.invPlayersCalls++
	return m.invalidateErr
}

func (m *cacheMock) InvalidateMatches(_ context.Context) error {
	m.invMatchesCalls++
	return m.invalidateErr
}

type userRepoMock struct {
	users       map[string]models.User
	createErr   error
	createCalls int
}

func (m *userRepoMock) CreateUser(_ context.Context, user models.User) (models.User, error) {
	m.createCalls++
	if m.createErr != nil {
		return models.User{}, m.createErr
	}
	if _, ok := m.users[user.Username]; ok {
		return models.User{}, derr.ErrUsernameTaken
	}
	user.ID = models.UserID("user-" + user.Username)
	if m.users == nil {
		m.users = make(map[string]models.User)
	}
	m.users[user.Username] = user
	return user, nil
}

func (m *userRepoMock) GetUserByUsername(_ context.Context, username string) (models.User, error) {
	u, ok := m.users[username]
	if !ok {
		return models.User{}, derr.ErrUserNotFound
	}
	return u, nil
}

type tokenRepoMock struct {
	saved       []models.Session
	revoked     map[string]bool
	saveErr     error
	revokeErr   error
	revokedErr  error
	saveCalls   int
	revokeCalls int
}

func (m *tokenRepoMock) SaveSession(_ context.Context, session models.Session) error {
	m.saveCalls++
	m.saved = append(m.saved, session)
	return m.saveErr
}

func (m *tokenRepoMock) RevokeSession(_ context.Context, session models.Session) error {
	m.revokeCalls++
	if m.revokeErr != nil {
		return m.revokeErr
	}
	if m.revoked == nil {
		m.revoked = make(map[string]bool)
	}
	m.revoked[session.TokenID] = true
	return nil
}

func (m *tokenRepoMock) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	if m.revokedErr != nil {
		return false, m.revokedErr
	}
	return m.revoked[tokenID], nil
}

type issuerMock struct {
	sessions map[string]models.Session
	issued   int
}

func (m *issuerMock) Issue(user models.User, now time.Time) (string, models.Session, error) {
	m.issued++
	token := "token-" + user.Username
	session := models.Session{
		TokenID:   "tid-" + user.Username,
		UserID:    user.ID,
		Username:  user.Username,
		Role:      user.Role,
		ExpiresAt: now.Add(time.Hour),
	}
	if m.sessions == nil {
		m.sessions = make(map[string]models.Session)
	}
	m.sessions[token] = session
	return token, session, nil
}

func (m *issuerMock) Parse(token string) (models.Session, error) {
	s, ok := m.sessions[token]
	if !ok {
		return models.Session{}, derr.ErrUnauthorized
	}
	return s, nil
}

type seqSource struct {
	values []float64
	i      int
}

func (s *seqSource) Float64() float64 {
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[s.i%len(s.values)]
	s.i++
	return v
}
