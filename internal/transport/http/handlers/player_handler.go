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

type PlayerHandler struct {
	log     *zap.Logger
	svc     PlayerService
	timeout time.Duration
}

func NewPlayerHandler(log *zap.Logger, svc PlayerService, timeout time.Duration) *PlayerHandler {
	return &PlayerHandler{log: log, svc: svc, timeout: timeout}
}

func (h *PlayerHandler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	players, err := h.svc.ListPlayers(ctx)
	if err != nil {
		WriteServiceError(w, h.log, err, "list players failed")
		return
	}

	writeJSON(w, http.StatusOK, players)
}

func (h *PlayerHandler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	id := models.PlayerID(mux.Vars(r)["id"])

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	player, err := h.svc.GetPlayer(ctx, id)
	if err != nil {
		WriteServiceError(w, h.log, err, "get player failed", zap.String("player_id", string(id)))
		return
	}

	writeJSON(w, http.StatusOK, player)
}

func (h *PlayerHandler) CreatePlayer(w http.ResponseWriter, r *http.Request) {
	var req playerRequest
	if err := decodeJSON(r, &req, derr.ErrInvalidPlayer); err != nil {
		WriteServiceError(w, h.log, err, "decode player failed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	player, err := h.svc.CreatePlayer(ctx, req.toModel())
	if err != nil {
		WriteServiceError(w, h.log, err, "create player failed")
		return
	}

	writeJSON(w, http.StatusCreated, player)
}

func (h *PlayerHandler) UpdatePlayer(w http.ResponseWriter, r *http.Request) {
	id := models.PlayerID(mux.Vars(r)["id"])

	var req playerUpdateRequest
	if err := decodeJSON(r, &req, derr.ErrInvalidPlayer); err != nil {
		WriteServiceError(w, h.log, err, "decode player update failed", zap.String("player_id", string(id)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	player, err := h.svc.UpdatePlayer(ctx, id, req.toModel())
	if err != nil {
		WriteServiceError(w, h.log, err, "update player failed", zap.String("player_id", string(id)))
		return
	}

	writeJSON(w, http.StatusOK, player)
}

func (h *PlayerHandler) DeletePlayer(w http.ResponseWriter, r *http.Request) {
	id := models.PlayerID(mux.Vars(r)["id"])

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.svc.DeletePlayer(ctx, id); err != nil {
		WriteServiceError(w, h.log, err, "delete player failed", zap.String("player_id", string(id)))
		return
	}

	writeOK(w)
}
