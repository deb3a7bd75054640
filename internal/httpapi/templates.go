package httpapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/almaluz/backend/internal/templates"
	"github.com/almaluz/backend/pkg/mailer"
)

func (h *handlers) listTemplates(w http.ResponseWriter, r *http.Request) {
	list, err := h.Templates.List(r.Context())
	if err != nil {
		h.Log.ErrorContext(r.Context(), "list templates", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to list templates")
		return
	}
	respondJSON(w, http.StatusOK, list)
}

type templateRequest struct {
	Name      string         `json:"name"`
	Type      templates.Type `json:"type"`
	Subject   string         `json:"subject"`
	Content   string         `json:"content"`
	Variables []string       `json:"variables"`
}

func (h *handlers) createTemplate(w http.ResponseWriter, r *http.Request) {
	var req templateRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.Subject == "" || req.Content == "" {
		respondError(w, http.StatusBadRequest, "name, subject and content are required")
		return
	}

	tpl := &templates.EmailTemplate{
		Name:      req.Name,
		Type:      req.Type,
		Subject:   req.Subject,
		Content:   req.Content,
		Variables: req.Variables,
	}
	if err := h.Templates.Create(r.Context(), tpl); err != nil {
		if errors.Is(err, templates.ErrInvalidType) {
			respondError(w, http.StatusBadRequest, "unknown template type")
			return
		}
		h.Log.ErrorContext(r.Context(), "create template", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to create template")
		return
	}
	respondJSON(w, http.StatusCreated, tpl)
}

func (h *handlers) getTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	tpl, err := h.Templates.ByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, templates.ErrNotFound) {
			respondError(w, http.StatusNotFound, "template not found")
			return
		}
		h.Log.ErrorContext(r.Context(), "get template", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load template")
		return
	}
	respondJSON(w, http.StatusOK, tpl)
}

func (h *handlers) updateTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req templateRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tpl := &templates.EmailTemplate{
		ID:        id,
		Name:      req.Name,
		Subject:   req.Subject,
		Content:   req.Content,
		Variables: req.Variables,
	}
	if err := h.Templates.Update(r.Context(), tpl); err != nil {
		if errors.Is(err, templates.ErrNotFound) {
			respondError(w, http.StatusNotFound, "template not found")
			return
		}
		h.Log.ErrorContext(r.Context(), "update template", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to update template")
		return
	}
	respondJSON(w, http.StatusOK, tpl)
}

func (h *handlers) deleteTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.Templates.Delete(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, templates.ErrNotFound):
			respondError(w, http.StatusNotFound, "template not found")
		case errors.Is(err, templates.ErrSystemTemplate):
			respondError(w, http.StatusForbidden, "system templates cannot be deleted")
		default:
			h.Log.ErrorContext(r.Context(), "delete template", "error", err)
			respondError(w, http.StatusInternalServerError, "failed to delete template")
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) activateTemplate(w http.ResponseWriter, r *http.Request) {
	h.setTemplateActive(w, r, true)
}

func (h *handlers) deactivateTemplate(w http.ResponseWriter, r *http.Request) {
	h.setTemplateActive(w, r, false)
}

func (h *handlers) setTemplateActive(w http.ResponseWriter, r *http.Request, active bool) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var err error
	if active {
		err = h.Templates.Activate(r.Context(), id)
	} else {
		err = h.Templates.Deactivate(r.Context(), id)
	}
	if err != nil {
		if errors.Is(err, templates.ErrNotFound) {
			respondError(w, http.StatusNotFound, "template not found")
			return
		}
		h.Log.ErrorContext(r.Context(), "toggle template", "error", err, "active", active)
		respondError(w, http.StatusInternalServerError, "failed to update template state")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"is_active": active})
}

// testSendTemplate renders a template with caller-supplied variables and
// sends it to a single address, bypassing the active-template lookup so
// drafts can be previewed before activation.
func (h *handlers) testSendTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		To   string      `json:"to"`
		Vars mailer.Vars `json:"variables"`
	}
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.To == "" {
		respondError(w, http.StatusBadRequest, "recipient address is required")
		return
	}

	tpl, err := h.Templates.ByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, templates.ErrNotFound) {
			respondError(w, http.StatusNotFound, "template not found")
			return
		}
		h.Log.ErrorContext(r.Context(), "test send", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load template")
		return
	}

	res := h.Notifier.TestSend(r.Context(), tpl, req.To, req.Vars)
	respondJSON(w, http.StatusOK, res)
}

// pathID parses the {id} route parameter, writing a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}
