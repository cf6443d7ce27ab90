package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"linkup/internal/domain"
	"linkup/internal/dto"
)

func (h *Handler) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req dto.SendMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	msg, err := h.chat.Send(r.Context(), req.ChannelID, identity(r), req.Text)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	channelID := chi.URLParam(r, "channelID")
	if !h.authorizeChannel(w, r, channelID) {
		return
	}
	msgs, err := h.chat.History(r.Context(), channelID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if msgs == nil {
		msgs = []dto.ChatMessage{}
	}
	writeJSON(w, http.StatusOK, msgs)
}

// authorizeChannel rejects malformed channel ids and callers who are not one
// of the two participants encoded in it.
func (h *Handler) authorizeChannel(w http.ResponseWriter, r *http.Request, channelID string) bool {
	if _, _, err := domain.ChannelMembers(channelID); err != nil {
		writeError(w, r, err)
		return false
	}
	if !domain.IsChannelMember(channelID, identity(r)) {
		writeError(w, r, domain.ErrNotParticipant)
		return false
	}
	return true
}
