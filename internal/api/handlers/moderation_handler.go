package handlers

import (
	"context"
	"net/http"

	"github.com/zatekoja/search-suggestions/internal/domain/entities"
)

// Moderator defines the moderation operations used by the handler.
type Moderator interface {
	ToggleApproval(ctx context.Context, suggestionID string) (string, error)
	ListForModeration(ctx context.Context, scopeID string, approved bool, limit int) ([]*entities.Suggestion, error)
}

// SuggestionMaintainer defines the ledger maintenance operations used by the handler.
type SuggestionMaintainer interface {
	RecountScope(ctx context.Context, scopeID string) (int, error)
	ZeroResultTerms(ctx context.Context, scopeID string, limit int) ([]*entities.SearchEvent, error)
}

// ModerationHandler serves the admin moderation workflow.
type ModerationHandler struct {
	moderator  Moderator
	maintainer SuggestionMaintainer
}

// NewModerationHandler creates a new moderation handler.
func NewModerationHandler(moderator Moderator, maintainer SuggestionMaintainer) *ModerationHandler {
	return &ModerationHandler{moderator: moderator, maintainer: maintainer}
}

// ListSuggestions handles GET /api/admin/scopes/{id}/suggestions?approved=&limit=
func (h *ModerationHandler) ListSuggestions(w http.ResponseWriter, r *http.Request) {
	approved, err := parseBool(r, "approved", false)
	if err != nil {
		respondWithAppError(w, r, err, "invalid approved filter")
		return
	}
	limit, err := parseLimit(r, 0)
	if err != nil {
		respondWithAppError(w, r, err, "invalid limit")
		return
	}

	suggestions, err := h.moderator.ListForModeration(r.Context(), r.PathValue("id"), approved, limit)
	if err != nil {
		respondWithAppError(w, r, err, "failed to list suggestions")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"suggestions": suggestions,
		"count":       len(suggestions),
	})
}

// ToggleApproval handles POST /api/admin/suggestions/{id}/toggle-approval
func (h *ModerationHandler) ToggleApproval(w http.ResponseWriter, r *http.Request) {
	suggestionID := r.PathValue("id")
	if suggestionID == "" {
		respondWithError(w, http.StatusBadRequest, "suggestion ID is required")
		return
	}

	message, err := h.moderator.ToggleApproval(r.Context(), suggestionID)
	if err != nil {
		respondWithAppError(w, r, err, "failed to toggle approval")
		return
	}
	if message == "" {
		respondWithError(w, http.StatusNotFound, "suggestion not found")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": message})
}

// RecountScope handles POST /api/admin/scopes/{id}/recount
func (h *ModerationHandler) RecountScope(w http.ResponseWriter, r *http.Request) {
	scopeID := r.PathValue("id")
	if scopeID == "" {
		respondWithError(w, http.StatusBadRequest, "scope ID is required")
		return
	}

	changed, err := h.maintainer.RecountScope(r.Context(), scopeID)
	if err != nil {
		respondWithAppError(w, r, err, "failed to recount suggestions")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"scope_id": scopeID,
		"changed":  changed,
	})
}

// GetZeroResultTerms handles GET /api/admin/scopes/{id}/zero-result-terms?limit=
func (h *ModerationHandler) GetZeroResultTerms(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, 50)
	if err != nil {
		respondWithAppError(w, r, err, "invalid limit")
		return
	}

	events, err := h.maintainer.ZeroResultTerms(r.Context(), r.PathValue("id"), limit)
	if err != nil {
		respondWithAppError(w, r, err, "failed to load zero result terms")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"events": events,
		"count":  len(events),
	})
}
