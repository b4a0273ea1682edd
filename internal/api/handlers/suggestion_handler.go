package handlers

import (
	"context"
	"net/http"
)

// SuggestionQuerier defines the read operations used by the handler.
type SuggestionQuerier interface {
	Suggest(ctx context.Context, term, scopeID string, limit int, approvedOnly bool) ([]string, error)
	SuggestForScope(ctx context.Context, scopeID string, limit int, approvedOnly bool) ([]string, error)
}

// SuggestionHandler serves public autocomplete suggestions. Only approved
// suggestions are ever returned here.
type SuggestionHandler struct {
	query SuggestionQuerier
}

// NewSuggestionHandler creates a new suggestion handler.
func NewSuggestionHandler(query SuggestionQuerier) *SuggestionHandler {
	return &SuggestionHandler{query: query}
}

type suggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
	Count       int      `json:"count"`
}

// GetSuggestions handles GET /api/suggestions?term=&scope=&limit=
func (h *SuggestionHandler) GetSuggestions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit, err := parseLimit(r, 0)
	if err != nil {
		respondWithAppError(w, r, err, "invalid limit")
		return
	}

	terms, err := h.query.Suggest(r.Context(), query.Get("term"), query.Get("scope"), limit, true)
	if err != nil {
		respondWithAppError(w, r, err, "failed to load suggestions")
		return
	}

	respondWithJSON(w, http.StatusOK, suggestionsResponse{Suggestions: terms, Count: len(terms)})
}

// GetScopeSuggestions handles GET /api/scopes/{id}/suggestions?limit=
func (h *SuggestionHandler) GetScopeSuggestions(w http.ResponseWriter, r *http.Request) {
	scopeID := r.PathValue("id")
	if scopeID == "" {
		respondWithError(w, http.StatusBadRequest, "scope ID is required")
		return
	}

	limit, err := parseLimit(r, 0)
	if err != nil {
		respondWithAppError(w, r, err, "invalid limit")
		return
	}

	terms, err := h.query.SuggestForScope(r.Context(), scopeID, limit, true)
	if err != nil {
		respondWithAppError(w, r, err, "failed to load suggestions")
		return
	}

	respondWithJSON(w, http.StatusOK, suggestionsResponse{Suggestions: terms, Count: len(terms)})
}
