package handlers

import (
	"context"
	"net/http"
	"time"

	derr "github.com/ozzus/fulbito/internal/domain/errors"
	"go.uber.org/zap"
)

type AuthHandler struct {
	log     *zap.Logger
	svc     AuthService
	timeout time.Duration
}

func NewAuthHandler(log *zap.Logger, svc AuthService, timeout time.Duration) *AuthHandler {
	return &AuthHandler{log: log, svc: svc, timeout: timeout}
}

type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type loginResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt"`
	Username  string `json:"username"`
	Role      string `json:"role"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req, derr.ErrInvalidAccount); err != nil {
		WriteServiceError(w, h.log, err, "decode register failed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	user, err := h.svc.Register(ctx, req.Username, req.Password)
	if err != nil {
		WriteServiceError(w, h.log, err, "register failed")
		return
	}

	writeJSON(w, http.StatusCreated, userResponse{
		ID:       string(user.ID),
		Username: user.Username,
		Role:     string(user.Role),
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req, derr.ErrInvalidCredentials); err != nil {
		WriteServiceError(w, h.log, err, "decode login failed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	res, err := h.svc.Login(ctx, req.Username, req.Password)
	if err != nil {
		WriteServiceError(w, h.log, err, "login failed")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Token:     res.Token,
		ExpiresAt: res.Session.ExpiresAt.UTC().Format(time.RFC3339),
		Username:  res.Session.Username,
		Role:      string(res.Session.Role),
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session, ok := SessionFrom(r.Context())
	if !ok {
		WriteServiceError(w, h.log, derr.ErrUnauthorized, "logout without session")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.svc.Logout(ctx, session); err != nil {
		WriteServiceError(w, h.log, err, "logout failed")
		return
	}

	writeOK(w)
}
