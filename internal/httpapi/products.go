package httpapi

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/almaluz/backend/internal/catalog"
)

// exportProducts streams the full catalog as a JSON document suitable for
// re-import.
func (h *handlers) exportProducts(w http.ResponseWriter, r *http.Request) {
	list, err := h.Products.List(r.Context())
	if err != nil {
		h.Log.ErrorContext(r.Context(), "export products", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to export products")
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="products.json"`)
	respondJSON(w, http.StatusOK, map[string]any{
		"count":    len(list),
		"products": list,
	})
}

func (h *handlers) importProducts(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Products []catalog.Product `json:"products"`
	}
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Products) == 0 {
		respondError(w, http.StatusBadRequest, "no products to import")
		return
	}
	for _, p := range req.Products {
		if p.SKU == "" || p.Name == "" {
			respondError(w, http.StatusBadRequest, "every product needs a sku and a name")
			return
		}
	}

	if err := h.Products.Import(r.Context(), req.Products); err != nil {
		h.Log.ErrorContext(r.Context(), "import products", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to import products")
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"imported": len(req.Products)})
}

func (h *handlers) bulkSetActive(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs    []uuid.UUID `json:"ids"`
		Active bool        `json:"active"`
	}
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.IDs) == 0 {
		respondError(w, http.StatusBadRequest, "ids are required")
		return
	}

	updated, err := h.Products.BulkSetActive(r.Context(), req.IDs, req.Active)
	if err != nil {
		h.Log.ErrorContext(r.Context(), "bulk set active", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to update products")
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"updated": updated})
}

func (h *handlers) bulkAdjustPrices(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs     []uuid.UUID `json:"ids"`
		Percent float64     `json:"percent"`
	}
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.IDs) == 0 {
		respondError(w, http.StatusBadRequest, "ids are required")
		return
	}
	if req.Percent <= -100 {
		respondError(w, http.StatusBadRequest, "percent must be greater than -100")
		return
	}

	updated, err := h.Products.BulkAdjustPrices(r.Context(), req.IDs, req.Percent)
	if err != nil {
		h.Log.ErrorContext(r.Context(), "bulk adjust prices", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to update prices")
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"updated": updated})
}
