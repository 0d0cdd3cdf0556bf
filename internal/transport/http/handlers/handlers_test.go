package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/ozzus/fulbito/internal/application/service"
	derr "github.com/ozzus/fulbito/internal/domain/errors"
	"github.com/ozzus/fulbito/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type playerServiceStub struct {
	created  models.Player
	update   models.PlayerUpdate
	err      error
	getCalls int
}

func (s *playerServiceStub) ListPlayers(context.Context) ([]models.Player, error) {
	return []models.Player{{ID: "p1", Name: "Lio", Skill: models.Unknown()}}, s.err
}

func (s *playerServiceStub) GetPlayer(_ context.Context, id models.PlayerID) (models.Player, error) {
	s.getCalls++
	if s.err != nil {
		return models.Player{}, s.err
	}
	return models.Player{ID: id}, nil
}

func (s *playerServiceStub) CreatePlayer(_ context.Context, p models.Player) (models.Player, error) {
	s.created = p
	p.ID = "new"
	return p, s.err
}

func (s *playerServiceStub) UpdatePlayer(_ context.Context, id models.PlayerID, u models.PlayerUpdate) (models.Player, error) {
	s.update = u
	return models.Player{ID: id}, s.err
}

func (s *playerServiceStub) DeletePlayer(context.Context, models.PlayerID) error {
	return s.err
}

type matchServiceStub struct {
	matches []models.Match
	created models.Match
	update  models.MatchUpdate
	err     error
}

func (s *matchServiceStub) ListMatches(context.Context) ([]models.Match, error) {
	return s.matches, s.err
}

func (s *matchServiceStub) GetMatch(_ context.Context, id models.MatchID) (models.Match, error) {
	return models.Match{ID: id}, s.err
}

func (s *matchServiceStub) CreateMatch(_ context.Context, m models.Match) (models.MatchID, error) {
	s.created = m
	return "m-new", s.err
}

func (s *matchServiceStub) UpdateMatch(_ context.Context, _ models.MatchID, u models.MatchUpdate) error {
	s.update = u
	return s.err
}

func (s *matchServiceStub) DeleteMatch(context.Context, models.MatchID) error {
	return s.err
}

type authServiceStub struct {
	loggedOut models.Session
}

func (s *authServiceStub) Register(_ context.Context, username, _ string) (models.User, error) {
	return models.User{ID: "u1", Username: username, Role: models.RoleUser}, nil
}

func (s *authServiceStub) Login(_ context.Context, username, password string) (service.LoginResult, error) {
	if password != "secret1" {
		return service.LoginResult{}, fmt.Errorf("service.Login: %w", derr.ErrInvalidCredentials)
	}
	return service.LoginResult{
		Token:   "tok",
		Session: models.Session{Username: username, Role: models.RoleAdmin, ExpiresAt: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)},
	}, nil
}

func (s *authServiceStub) Logout(_ context.Context, session models.Session) error {
	s.loggedOut = session
	return nil
}

func (s *authServiceStub) Authenticate(context.Context, string) (models.Session, error) {
	return models.Session{}, derr.ErrUnauthorized
}

func withVars(r *http.Request, vars map[string]string) *http.Request {
	return mux.SetURLVars(r, vars)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst))
}

func TestMapServiceError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"player not found", fmt.Errorf("service.GetPlayer: %w", derr.ErrPlayerNotFound), http.StatusNotFound, "player not found"},
		{"match not found", derr.ErrMatchNotFound, http.StatusNotFound, "match not found"},
		{"invalid match keeps detail", fmt.Errorf("service.CreateMatch: %w: bad date", derr.ErrInvalidMatch), http.StatusBadRequest, "invalid match: bad date"},
		{"invalid selection", derr.ErrInvalidSelection, http.StatusBadRequest, "invalid team selection"},
		{"taken", derr.ErrUsernameTaken, http.StatusConflict, "username already taken"},
		{"credentials", derr.ErrInvalidCredentials, http.StatusUnauthorized, "invalid credentials"},
		{"revoked", derr.ErrTokenRevoked, http.StatusUnauthorized, "token revoked"},
		{"forbidden", derr.ErrForbidden, http.StatusForbidden, "forbidden"},
		{"deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), http.StatusGatewayTimeout, "request timeout"},
		{"canceled", context.Canceled, http.StatusServiceUnavailable, "request canceled"},
		{"unknown", errors.New("pq: connection reset"), http.StatusInternalServerError, "internal error"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			status, msg := mapServiceError(tc.err)
			if status != tc.wantStatus {
				t.Fatalf("expected status %d, got %d", tc.wantStatus, status)
			}
			if msg != tc.wantMsg {
				t.Fatalf("expected message %q, got %q", tc.wantMsg, msg)
			}
		})
	}
}

func TestCreatePlayer(t *testing.T) {
	svc := &playerServiceStub{}
	h := NewPlayerHandler(zap.NewNop(), svc, time.Second)

	body := `{"name":"Lio","position":"FW","skill":"unknown","skills":{"physical":7,"technical":9,"tactical":8,"psychological":null}}`
	rec := httptest.NewRecorder()
	h.CreatePlayer(rec, httptest.NewRequest(http.MethodPost, "/api/players", strings.NewReader(body)))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Lio", svc.created.Name)
	assert.False(t, svc.created.Skill.IsKnown())
	require.NotNil(t, svc.created.Attributes)
	assert.False(t, svc.created.Attributes.Psychological.IsKnown())
}

func TestCreatePlayer_ValidationError(t *testing.T) {
	svc := &playerServiceStub{}
	h := NewPlayerHandler(zap.NewNop(), svc, time.Second)

	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{name: "missing name", body: `{"skill":5}`, wantMsg: "name"},
		{name: "malformed", body: `{"name":`, wantMsg: "malformed json"},
		{name: "empty", body: ``, wantMsg: "empty"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.CreatePlayer(rec, httptest.NewRequest(http.MethodPost, "/api/players", strings.NewReader(tc.body)))

			require.Equal(t, http.StatusBadRequest, rec.Code)
			var resp map[string]string
			decodeBody(t, rec, &resp)
			assert.Contains(t, resp["error"], tc.wantMsg)
		})
	}
}

func TestGetPlayer_NotFound(t *testing.T) {
	svc := &playerServiceStub{err: derr.ErrPlayerNotFound}
	h := NewPlayerHandler(zap.NewNop(), svc, time.Second)

	rec := httptest.NewRecorder()
	req := withVars(httptest.NewRequest(http.MethodGet, "/api/players/x", nil), map[string]string{"id": "x"})
	h.GetPlayer(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 1, svc.getCalls)
}

func TestUpdatePlayer_PartialBody(t *testing.T) {
	svc := &playerServiceStub{}
	h := NewPlayerHandler(zap.NewNop(), svc, time.Second)

	rec := httptest.NewRecorder()
	req := withVars(httptest.NewRequest(http.MethodPut, "/api/players/p1", strings.NewReader(`{"skill":8}`)), map[string]string{"id": "p1"})
	h.UpdatePlayer(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, svc.update.Name)
	require.NotNil(t, svc.update.Skill)
	v, ok := svc.update.Skill.Value()
	assert.True(t, ok)
	assert.Equal(t, 8.0, v)
}

func TestCreateMatch(t *testing.T) {
	svc := &matchServiceStub{}
	h := NewMatchHandler(zap.NewNop(), svc, time.Second)

	body := `{"date":"2024-05-10","type":"5v5","teamAScore":2,"teamBScore":1,
		"teamA":[{"id":"a1","goals":2,"performance":8}],
		"teamB":[{"id":"b1","goals":1}]}`
	rec := httptest.NewRecorder()
	h.CreateMatch(rec, httptest.NewRequest(http.MethodPost, "/api/matches", strings.NewReader(body)))

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp map[string]string
	decodeBody(t, rec, &resp)
	assert.Equal(t, "m-new", resp["id"])
	assert.Equal(t, models.Format("5v5"), svc.created.Format)
	assert.Equal(t, models.PlayerID("b1"), svc.created.TeamB[0].PlayerID)
}

func TestCreateMatch_InvalidParticipant(t *testing.T) {
	h := NewMatchHandler(zap.NewNop(), &matchServiceStub{}, time.Second)

	body := `{"date":"2024-05-10","type":"5v5","teamA":[{"goals":-1,"performance":12}]}`
	rec := httptest.NewRecorder()
	h.CreateMatch(rec, httptest.NewRequest(http.MethodPost, "/api/matches", strings.NewReader(body)))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp map[string]string
	decodeBody(t, rec, &resp)
	assert.Contains(t, resp["error"], "teamA[0].id")
	assert.Contains(t, resp["error"], "teamA[0].goals")
	assert.Contains(t, resp["error"], "teamA[0].performance")
}

func TestUpdateMatch_BodyToUpdate(t *testing.T) {
	tests := []struct {
		name            string
		body            string
		wantReplace     bool
		wantResponsible *models.PlayerID
	}{
		{name: "scores only", body: `{"teamAScore":1}`},
		{name: "one team replaces both", body: `{"teamA":[{"id":"a1"}]}`, wantReplace: true},
		{name: "null responsible clears", body: `{"shirtsResponsibleId":null}`, wantResponsible: ptr(models.PlayerID(""))},
		{name: "responsible set", body: `{"shirtsResponsibleId":"p7"}`, wantResponsible: ptr(models.PlayerID("p7"))},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &matchServiceStub{}
			h := NewMatchHandler(zap.NewNop(), svc, time.Second)

			rec := httptest.NewRecorder()
			req := withVars(httptest.NewRequest(http.MethodPut, "/api/matches/m1", strings.NewReader(tc.body)), map[string]string{"id": "m1"})
			h.UpdateMatch(rec, req)

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tc.wantReplace, svc.update.ReplaceTeams)
			if tc.wantReplace {
				assert.Len(t, svc.update.TeamA, 1)
				assert.Empty(t, svc.update.TeamB)
			}
			assert.Equal(t, tc.wantResponsible, svc.update.ShirtsResponsibleID)
		})
	}
}

func TestListMatches_Limit(t *testing.T) {
	svc := &matchServiceStub{matches: []models.Match{{ID: "m3"}, {ID: "m2"}, {ID: "m1"}}}
	h := NewMatchHandler(zap.NewNop(), svc, time.Second)

	rec := httptest.NewRecorder()
	h.ListMatches(rec, httptest.NewRequest(http.MethodGet, "/api/matches?limit=2", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var got []models.Match
	decodeBody(t, rec, &got)
	assert.Len(t, got, 2)

	rec = httptest.NewRecorder()
	h.ListMatches(rec, httptest.NewRequest(http.MethodGet, "/api/matches?limit=x", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginAndLogout(t *testing.T) {
	svc := &authServiceStub{}
	h := NewAuthHandler(zap.NewNop(), svc, time.Second)

	rec := httptest.NewRecorder()
	h.Login(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"username":"diego","password":"nope"}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	h.Login(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"username":"diego","password":"secret1"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	var login loginResponse
	decodeBody(t, rec, &login)
	assert.Equal(t, "tok", login.Token)
	assert.Equal(t, "2030-01-01T00:00:00Z", login.ExpiresAt)
	assert.Equal(t, "ADMIN", login.Role)

	rec = httptest.NewRecorder()
	h.Logout(rec, httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	session := models.Session{TokenID: "t1", Username: "diego"}
	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req = req.WithContext(WithSession(req.Context(), session))
	rec = httptest.NewRecorder()
	h.Logout(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, session, svc.loggedOut)
}

func TestRegister(t *testing.T) {
	h := NewAuthHandler(zap.NewNop(), &authServiceStub{}, time.Second)

	rec := httptest.NewRecorder()
	h.Register(rec, httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(`{"username":"diego","password":"secret1"}`)))
	require.Equal(t, http.StatusCreated, rec.Code)
	var user userResponse
	decodeBody(t, rec, &user)
	assert.Equal(t, userResponse{ID: "u1", Username: "diego", Role: "USER"}, user)

	rec = httptest.NewRecorder()
	h.Register(rec, httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(`{"username":"diego"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpload(t *testing.T) {
	h := NewUploadHandler(zap.NewNop(), 1024)

	newRequest := func(t *testing.T, field string, content []byte) *http.Request {
		t.Helper()
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		fw, err := mw.CreateFormFile(field, "photo.gif")
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		return req
	}

	t.Run("data url", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.Upload(rec, newRequest(t, "file", []byte("GIF89a...")))

		require.Equal(t, http.StatusOK, rec.Code)
		var resp map[string]string
		decodeBody(t, rec, &resp)
		assert.Equal(t, "data:image/gif;base64,R0lGODlhLi4u", resp["url"])
	})

	t.Run("missing file", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.Upload(rec, newRequest(t, "other", []byte("x")))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("too large", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.Upload(rec, newRequest(t, "file", bytes.Repeat([]byte("a"), 1500)))
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})
}

func TestStreakResponseJSON(t *testing.T) {
	none, err := json.Marshal(newStreakResponse(models.Streak{}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":null,"count":0,"label":"—"}`, string(none))

	win, err := json.Marshal(newStreakResponse(models.Streak{Kind: models.StreakWin, Count: 3}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"win","count":3,"label":"W3"}`, string(win))
}

func ptr[T any](v T) *T { return &v }

func TestListMatches_PlayerFilter(t *testing.T) {
	svc := &matchServiceStub{matches: []models.Match{
		{ID: "m3", TeamA: []models.Participation{{PlayerID: "p1"}}},
		{ID: "m2", TeamB: []models.Participation{{PlayerID: "p2"}}},
		{ID: "m1", TeamB: []models.Participation{{PlayerID: "p1"}}},
	}}
	h := NewMatchHandler(zap.NewNop(), svc, time.Second)

	tests := []struct {
		query string
		want  []models.MatchID
	}{
		{query: "?playerId=p1", want: []models.MatchID{"m3", "m1"}},
		{query: "?playerId=p1&limit=1", want: []models.MatchID{"m3"}},
		{query: "?playerId=nobody", want: []models.MatchID{}},
		{query: "?playerId=%20", want: []models.MatchID{"m3", "m2", "m1"}},
	}

	for _, tc := range tests {
		t.Run(tc.query, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ListMatches(rec, httptest.NewRequest(http.MethodGet, "/api/matches"+tc.query, nil))
			require.Equal(t, http.StatusOK, rec.Code)

			var got []models.Match
			decodeBody(t, rec, &got)
			ids := make([]models.MatchID, 0, len(got))
			for _, m := range got {
				ids = append(ids, m.ID)
			}
			assert.Equal(t, tc.want, ids)
		})
	}
}
