package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/ozzus/fulbito/internal/domain/models"
	"go.uber.org/zap"
)

type StatsHandler struct {
	log     *zap.Logger
	svc     StatsService
	timeout time.Duration
}

func NewStatsHandler(log *zap.Logger, svc StatsService, timeout time.Duration) *StatsHandler {
	return &StatsHandler{log: log, svc: svc, timeout: timeout}
}

func (h *StatsHandler) PlayerTable(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	table, err := h.svc.PlayerTable(ctx)
	if err != nil {
		WriteServiceError(w, h.log, err, "player stats failed")
		return
	}

	writeJSON(w, http.StatusOK, table)
}

func (h *StatsHandler) PlayerProfile(w http.ResponseWriter, r *http.Request) {
	id := models.PlayerID(mux.Vars(r)["id"])

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	profile, err := h.svc.PlayerProfile(ctx, id)
	if err != nil {
		WriteServiceError(w, h.log, err, "player profile failed", zap.String("player_id", string(id)))
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

type streakResponse struct {
	Kind  *models.StreakKind `json:"kind"`
	Count int                `json:"count"`
	Label string             `json:"label"`
}

func newStreakResponse(s models.Streak) streakResponse {
	out := streakResponse{Count: s.Count, Label: s.String()}
	if s.Kind != models.StreakNone {
		kind := s.Kind
		out.Kind = &kind
	}
	return out
}

func (h *StatsHandler) Streaks(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	streaks, err := h.svc.Streaks(ctx)
	if err != nil {
		WriteServiceError(w, h.log, err, "streaks failed")
		return
	}

	out := make(map[models.PlayerID]streakResponse, len(streaks))
	for id, s := range streaks {
		out[id] = newStreakResponse(s)
	}
	writeJSON(w, http.StatusOK, out)
}
