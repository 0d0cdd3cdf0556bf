package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	derr "github.com/ozzus/fulbito/internal/domain/errors"
	"github.com/ozzus/fulbito/internal/domain/models"
	"go.uber.org/zap"
)

type MatchHandler struct {
	log     *zap.Logger
	svc     MatchService
	timeout time.Duration
}

func NewMatchHandler(log *zap.Logger, svc MatchService, timeout time.Duration) *MatchHandler {
	return &MatchHandler{log: log, svc: svc, timeout: timeout}
}

// ListMatches returns the history, newest first. ?playerId= keeps the
// matches that player took part in and ?limit=N keeps the first N.
func (h *MatchHandler) ListMatches(w http.ResponseWriter, r *http.Request) {
	limit, hasLimit, errMsg := parsePositiveIntQuery(r, "limit")
	if errMsg != "" {
		WriteError(w, http.StatusBadRequest, "limit must be a positive integer")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	matches, err := h.svc.ListMatches(ctx)
	if err != nil {
		WriteServiceError(w, h.log, err, "list matches failed")
		return
	}

	matches = filterMatchesByPlayerID(matches, r.URL.Query().Get("playerId"))
	if hasLimit {
		matches = cutMatchesByLimit(matches, limit)
	}
	writeJSON(w, http.StatusOK, matches)
}

func (h *MatchHandler) GetMatch(w http.ResponseWriter, r *http.Request) {
	id := models.MatchID(mux.Vars(r)["id"])

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	match, err := h.svc.GetMatch(ctx, id)
	if err != nil {
		WriteServiceError(w, h.log, err, "get match failed", zap.String("match_id", string(id)))
		return
	}

	writeJSON(w, http.StatusOK, match)
}

func (h *MatchHandler) CreateMatch(w http.ResponseWriter, r *http.Request) {
	var req matchRequest
	if err := decodeJSON(r, &req, derr.ErrInvalidMatch); err != nil {
		WriteServiceError(w, h.log, err, "decode match failed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, err := h.svc.CreateMatch(ctx, req.toModel())
	if err != nil {
		WriteServiceError(w, h.log, err, "create match failed")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": string(id)})
}

func (h *MatchHandler) UpdateMatch(w http.ResponseWriter, r *http.Request) {
	id := models.MatchID(mux.Vars(r)["id"])

	var req matchUpdateRequest
	if err := decodeJSON(r, &req, derr.ErrInvalidMatch); err != nil {
		WriteServiceError(w, h.log, err, "decode match update failed", zap.String("match_id", string(id)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.svc.UpdateMatch(ctx, id, req.toModel()); err != nil {
		WriteServiceError(w, h.log, err, "update match failed", zap.String("match_id", string(id)))
		return
	}

	writeOK(w)
}

func (h *MatchHandler) DeleteMatch(w http.ResponseWriter, r *http.Request) {
	id := models.MatchID(mux.Vars(r)["id"])

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.svc.DeleteMatch(ctx, id); err != nil {
		WriteServiceError(w, h.log, err, "delete match failed", zap.String("match_id", string(id)))
		return
	}

	writeOK(w)
}
