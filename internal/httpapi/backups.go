package httpapi

import (
	"errors"
	"net/http"

	"github.com/almaluz/backend/internal/backup"
	"github.com/almaluz/backend/pkg/health"
)

func (h *handlers) createBackup(w http.ResponseWriter, r *http.Request) {
	b, err := h.Backups.Create(r.Context())
	if err != nil {
		h.Log.ErrorContext(r.Context(), "create backup", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to create backup")
		return
	}
	respondJSON(w, http.StatusCreated, b)
}

func (h *handlers) listBackups(w http.ResponseWriter, r *http.Request) {
	list, err := h.Backups.List(r.Context())
	if err != nil {
		h.Log.ErrorContext(r.Context(), "list backups", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to list backups")
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (h *handlers) restoreBackup(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.Backups.Restore(r.Context(), id); err != nil {
		if errors.Is(err, backup.ErrNotFound) {
			respondError(w, http.StatusNotFound, "backup not found")
			return
		}
		h.Log.ErrorContext(r.Context(), "restore backup", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to restore backup")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"restored": true})
}

func (h *handlers) deleteBackup(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.Backups.Delete(r.Context(), id); err != nil {
		if errors.Is(err, backup.ErrNotFound) {
			respondError(w, http.StatusNotFound, "backup not found")
			return
		}
		h.Log.ErrorContext(r.Context(), "delete backup", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to delete backup")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// metrics reports operational counts alongside dependency health for the
// admin dashboard.
func (h *handlers) metrics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	products, err := h.Products.Count(ctx)
	if err != nil {
		h.Log.ErrorContext(ctx, "count products", "error", err)
	}
	profiles, err := h.Profiles.Count(ctx)
	if err != nil {
		h.Log.ErrorContext(ctx, "count profiles", "error", err)
	}
	tpls, err := h.Templates.List(ctx)
	if err != nil {
		h.Log.ErrorContext(ctx, "count templates", "error", err)
	}
	var usage int64
	for _, t := range tpls {
		usage += t.UsageCount
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"products":    products,
		"profiles":    profiles,
		"templates":   len(tpls),
		"emails_sent": usage,
		"health":      health.Run(ctx, h.Health, health.WithLogger(h.Log)),
	})
}
