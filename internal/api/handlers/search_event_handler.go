package handlers

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/zatekoja/search-suggestions/internal/application/services"
	"github.com/zatekoja/search-suggestions/internal/domain/entities"
	"github.com/zatekoja/search-suggestions/internal/domain/providers"
)

const searchEventRateWindow = time.Minute

// SearchRecorder defines the ingestion operation used by the handler.
type SearchRecorder interface {
	RecordSearch(ctx context.Context, record services.SearchRecord) (*entities.SearchEvent, error)
}

// SearchEventHandler accepts completed searches from the search front end.
type SearchEventHandler struct {
	recorder SearchRecorder
	access   providers.ScopeAccessChecker
	limiter  *rateLimiter
}

// NewSearchEventHandler creates a new search event handler. Events are only
// accepted for pages the caller may view. ratePerMinute bounds events per
// client IP; zero disables the limit.
func NewSearchEventHandler(recorder SearchRecorder, access providers.ScopeAccessChecker, cache providers.CacheProvider, ratePerMinute int) *SearchEventHandler {
	return &SearchEventHandler{
		recorder: recorder,
		access:   access,
		limiter:  newRateLimiter(cache, ratePerMinute, searchEventRateWindow),
	}
}

type searchEventRequest struct {
	Term        string  `json:"term"`
	Results     int     `json:"results"`
	ElapsedTime float64 `json:"elapsed_time"`
	Engine      string  `json:"engine"`
	Scope       string  `json:"scope"`
}

// RecordSearchEvent handles POST /api/search/events
func (h *SearchEventHandler) RecordSearchEvent(w http.ResponseWriter, r *http.Request) {
	var payload searchEventRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	payload.Term = strings.TrimSpace(payload.Term)
	payload.Scope = strings.TrimSpace(payload.Scope)
	if payload.Term == "" {
		respondWithError(w, http.StatusBadRequest, "term is required")
		return
	}
	if len(payload.Term) > 255 {
		respondWithError(w, http.StatusBadRequest, "term is too long")
		return
	}

	allowed, retryAfter := h.limiter.allow(r.Context(), "search:rate:"+clientIP(r))
	if !allowed {
		w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
		respondWithError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	// Unknown and restricted pages look the same to the caller.
	if payload.Scope != "" && !h.access.CanView(r.Context(), payload.Scope) {
		respondWithError(w, http.StatusNotFound, "scope not found")
		return
	}

	event, err := h.recorder.RecordSearch(r.Context(), services.SearchRecord{
		Term:        payload.Term,
		Results:     payload.Results,
		ElapsedTime: payload.ElapsedTime,
		Engine:      payload.Engine,
		ScopeID:     payload.Scope,
	})
	if err != nil {
		respondWithAppError(w, r, err, "failed to record search")
		return
	}

	if event == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	respondWithJSON(w, http.StatusCreated, event)
}
