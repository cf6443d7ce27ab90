package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"linkup/internal/domain"
)

type identityKey struct{}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps domain sentinels to statuses. Anything unrecognized is a
// 500 with a generic body; the cause goes to the log, not the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	msg := "internal error"

	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		status, msg = http.StatusUnauthorized, err.Error()
	case errors.Is(err, domain.ErrUserDisabled):
		status, msg = http.StatusForbidden, err.Error()
	case errors.Is(err, domain.ErrEmailInUse):
		status, msg = http.StatusConflict, err.Error()
	case errors.Is(err, domain.ErrInvalidEmail),
		errors.Is(err, domain.ErrWeakPassword),
		errors.Is(err, domain.ErrInvalidName),
		errors.Is(err, domain.ErrSelfRequest),
		errors.Is(err, domain.ErrInvalidChannel),
		errors.Is(err, domain.ErrEmptyMessage):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrNotReceiver),
		errors.Is(err, domain.ErrNotSender),
		errors.Is(err, domain.ErrNotParticipant):
		status, msg = http.StatusForbidden, err.Error()
	case errors.Is(err, domain.ErrRequestGone),
		errors.Is(err, domain.ErrUserNotFound):
		status, msg = http.StatusNotFound, err.Error()
	}

	if status == http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

// requireIdentity resolves the bearer token to the current identity and
// rejects the request without one.
func (h *Handler) requireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid, err := h.identityFromRequest(r)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey{}, uid)))
	})
}

func (h *Handler) identityFromRequest(r *http.Request) (domain.UserID, error) {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if after, ok := strings.CutPrefix(raw, "Bearer "); ok {
		return h.tokens.VerifyAccess(strings.TrimSpace(after))
	}
	// Websocket clients cannot set headers; accept ?token= there.
	if tok := r.URL.Query().Get("token"); tok != "" {
		return h.tokens.VerifyAccess(tok)
	}
	return uuid.Nil, domain.ErrInvalidCredentials
}

func identity(r *http.Request) domain.UserID {
	uid, _ := r.Context().Value(identityKey{}).(domain.UserID)
	return uid
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad request"})
		return false
	}
	return true
}
