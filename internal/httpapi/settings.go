package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/almaluz/backend/internal/settings"
)

func (h *handlers) listSettings(w http.ResponseWriter, r *http.Request) {
	all, err := h.Settings.All(r.Context())
	if err != nil {
		h.Log.ErrorContext(r.Context(), "list settings", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}
	respondJSON(w, http.StatusOK, all)
}

func (h *handlers) getSetting(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	value, err := h.Settings.Get(r.Context(), key)
	if err != nil {
		if errors.Is(err, settings.ErrNotFound) {
			respondError(w, http.StatusNotFound, "setting not found")
			return
		}
		h.Log.ErrorContext(r.Context(), "get setting", "error", err, "key", key)
		respondError(w, http.StatusInternalServerError, "failed to load setting")
		return
	}
	respondJSON(w, http.StatusOK, map[string]json.RawMessage{key: value})
}

func (h *handlers) putSetting(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	var req struct {
		Value json.RawMessage `json:"value"`
	}
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Value) == 0 {
		respondError(w, http.StatusBadRequest, "value is required")
		return
	}

	if err := h.Settings.Set(r.Context(), key, req.Value); err != nil {
		h.Log.ErrorContext(r.Context(), "set setting", "error", err, "key", key)
		respondError(w, http.StatusInternalServerError, "failed to store setting")
		return
	}
	respondJSON(w, http.StatusOK, map[string]json.RawMessage{key: req.Value})
}
