package http

import (
	"net/http"

	"linkup/internal/dto"
)

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	prof, err := h.profiles.Get(r.Context(), identity(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, prof)
}

func (h *Handler) handleRename(w http.ResponseWriter, r *http.Request) {
	var req dto.RenameRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.profiles.Rename(r.Context(), identity(r), req.Name); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	results, err := h.profiles.Search(r.Context(), identity(r), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if results == nil {
		results = []dto.SearchResult{}
	}
	writeJSON(w, http.StatusOK, results)
}
