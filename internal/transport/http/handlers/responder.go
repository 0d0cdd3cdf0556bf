package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	derr "github.com/ozzus/fulbito/internal/domain/errors"
	"go.uber.org/zap"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	if payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func WriteError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeOK(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

var errorStatuses = []struct {
	err    error
	status int
}{
	{derr.ErrPlayerNotFound, http.StatusNotFound},
	{derr.ErrMatchNotFound, http.StatusNotFound},
	{derr.ErrUserNotFound, http.StatusNotFound},
	{derr.ErrInvalidPlayer, http.StatusBadRequest},
	{derr.ErrInvalidMatch, http.StatusBadRequest},
	{derr.ErrInvalidSelection, http.StatusBadRequest},
	{derr.ErrInvalidAccount, http.StatusBadRequest},
	{derr.ErrUsernameTaken, http.StatusConflict},
	{derr.ErrInvalidCredentials, http.StatusUnauthorized},
	{derr.ErrUnauthorized, http.StatusUnauthorized},
	{derr.ErrTokenRevoked, http.StatusUnauthorized},
	{derr.ErrForbidden, http.StatusForbidden},
}

// mapServiceError picks the response status and a client-safe message.
// Messages of client errors start at the sentinel, dropping the op chain.
func mapServiceError(err error) (int, string) {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			return e.status, clientMessage(err, e.err)
		}
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "request timeout"
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, "request canceled"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func clientMessage(err, sentinel error) string {
	msg := err.Error()
	if i := strings.Index(msg, sentinel.Error()); i >= 0 {
		return msg[i:]
	}
	return sentinel.Error()
}

// WriteServiceError logs err with msg and answers with the mapped status.
// Server-side failures log at error level, client mistakes at debug.
func WriteServiceError(w http.ResponseWriter, log *zap.Logger, err error, msg string, fields ...zap.Field) {
	status, message := mapServiceError(err)
	fields = append(fields, zap.Error(err), zap.Int("status", status))
	if status >= http.StatusInternalServerError {
		log.Error(msg, fields...)
	} else {
		log.Debug(msg, fields...)
	}
	WriteError(w, status, message)
}
