package handlers

import (
	"context"
	"net/http"
	"time"

	derr "github.com/ozzus/fulbito/internal/domain/errors"
	"go.uber.org/zap"
)

type TeamHandler struct {
	log     *zap.Logger
	svc     TeamService
	timeout time.Duration
}

func NewTeamHandler(log *zap.Logger, svc TeamService, timeout time.Duration) *TeamHandler {
	return &TeamHandler{log: log, svc: svc, timeout: timeout}
}

func (h *TeamHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req teamsRequest
	if err := decodeJSON(r, &req, derr.ErrInvalidSelection); err != nil {
		WriteServiceError(w, h.log, err, "decode teams request failed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	res, err := h.svc.GenerateTeams(ctx, req.Type, toPlayerIDs(req.PlayerIDs))
	if err != nil {
		WriteServiceError(w, h.log, err, "generate teams failed", zap.String("type", req.Type))
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (h *TeamHandler) Regenerate(w http.ResponseWriter, r *http.Request) {
	var req teamsRequest
	if err := decodeJSON(r, &req, derr.ErrInvalidSelection); err != nil {
		WriteServiceError(w, h.log, err, "decode teams request failed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	res, err := h.svc.RegenerateTeams(ctx, req.Type, toPlayerIDs(req.PlayerIDs))
	if err != nil {
		WriteServiceError(w, h.log, err, "regenerate teams failed", zap.String("type", req.Type))
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (h *TeamHandler) Complete(w http.ResponseWriter, r *http.Request) {
	var req completeTeamsRequest
	if err := decodeJSON(r, &req, derr.ErrInvalidSelection); err != nil {
		WriteServiceError(w, h.log, err, "decode complete request failed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	res, err := h.svc.CompleteTeams(ctx, req.Type, toPlayerIDs(req.PlayerIDs), toPlayerIDs(req.TeamA), toPlayerIDs(req.TeamB))
	if err != nil {
		WriteServiceError(w, h.log, err, "complete teams failed", zap.String("type", req.Type))
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (h *TeamHandler) ShirtDuty(w http.ResponseWriter, r *http.Request) {
	var req shirtDutyRequest
	if err := decodeJSON(r, &req, derr.ErrInvalidSelection); err != nil {
		WriteServiceError(w, h.log, err, "decode shirt duty request failed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	res, err := h.svc.SuggestShirtDuty(ctx, toPlayerIDs(req.PlayerIDs))
	if err != nil {
		WriteServiceError(w, h.log, err, "suggest shirt duty failed")
		return
	}

	writeJSON(w, http.StatusOK, res)
}
