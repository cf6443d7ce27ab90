package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"linkup/internal/domain"
	"linkup/internal/dto"
)

func (h *Handler) handleSendRequest(w http.ResponseWriter, r *http.Request) {
	var req dto.SendRequestRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	to, err := uuid.Parse(req.To)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid recipient id"})
		return
	}
	outcome, err := h.friends.Send(r.Context(), identity(r), to)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.SendRequestResponse{State: string(outcome)})
}

func (h *Handler) handleListFriends(w http.ResponseWriter, r *http.Request) {
	friends, err := h.friends.ListFriends(r.Context(), identity(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if friends == nil {
		friends = []dto.Friend{}
	}
	writeJSON(w, http.StatusOK, friends)
}

func (h *Handler) handleIncoming(w http.ResponseWriter, r *http.Request) {
	h.writeRequestList(w, r, h.friends.Incoming)
}

func (h *Handler) handleOutgoing(w http.ResponseWriter, r *http.Request) {
	h.writeRequestList(w, r, h.friends.Outgoing)
}

func (h *Handler) writeRequestList(w http.ResponseWriter, r *http.Request, list func(context.Context, domain.UserID) ([]dto.PendingRequest, error)) {
	reqs, err := list(r.Context(), identity(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if reqs == nil {
		reqs = []dto.PendingRequest{}
	}
	writeJSON(w, http.StatusOK, reqs)
}

func (h *Handler) handleRequestCount(w http.ResponseWriter, r *http.Request) {
	n, err := h.friends.PendingCount(r.Context(), identity(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.RequestCountResponse{Pending: n})
}

func (h *Handler) handleAccept(w http.ResponseWriter, r *http.Request) {
	h.requestAction(w, r, h.friends.Accept)
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	h.requestAction(w, r, h.friends.Reject)
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	h.requestAction(w, r, h.friends.Cancel)
}

func (h *Handler) requestAction(w http.ResponseWriter, r *http.Request, action func(context.Context, domain.RequestID, domain.UserID) error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request id"})
		return
	}
	if err := action(r.Context(), id, identity(r)); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
