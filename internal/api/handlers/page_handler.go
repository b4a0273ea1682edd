package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/zatekoja/search-suggestions/internal/domain/entities"
)

// PageManager defines the page operations used by the handler.
type PageManager interface {
	CreatePage(ctx context.Context, title string, canViewType entities.CanViewType) (*entities.SearchPage, error)
	GetPage(ctx context.Context, id string) (*entities.SearchPage, error)
	ListPages(ctx context.Context) ([]*entities.SearchPage, error)
}

// PageHandler manages search pages.
type PageHandler struct {
	pages PageManager
}

// NewPageHandler creates a new page handler.
func NewPageHandler(pages PageManager) *PageHandler {
	return &PageHandler{pages: pages}
}

type createPageRequest struct {
	Title       string               `json:"title"`
	CanViewType entities.CanViewType `json:"can_view_type"`
}

// CreatePage handles POST /api/admin/pages
func (h *PageHandler) CreatePage(w http.ResponseWriter, r *http.Request) {
	var payload createPageRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	page, err := h.pages.CreatePage(r.Context(), payload.Title, payload.CanViewType)
	if err != nil {
		respondWithAppError(w, r, err, "failed to create page")
		return
	}

	respondWithJSON(w, http.StatusCreated, page)
}

// GetPage handles GET /api/admin/pages/{id}
func (h *PageHandler) GetPage(w http.ResponseWriter, r *http.Request) {
	page, err := h.pages.GetPage(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err, "failed to get page")
		return
	}

	respondWithJSON(w, http.StatusOK, page)
}

// ListPages handles GET /api/admin/pages
func (h *PageHandler) ListPages(w http.ResponseWriter, r *http.Request) {
	pages, err := h.pages.ListPages(r.Context())
	if err != nil {
		respondWithAppError(w, r, err, "failed to list pages")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"pages": pages,
		"count": len(pages),
	})
}
