package routes

import (
	"net/http"

	"github.com/zatekoja/search-suggestions/internal/api/handlers"
	"github.com/zatekoja/search-suggestions/internal/api/middleware"
	"github.com/zatekoja/search-suggestions/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	searchEventHandler *handlers.SearchEventHandler
	suggestionHandler  *handlers.SuggestionHandler
	moderationHandler  *handlers.ModerationHandler
	pageHandler        *handlers.PageHandler
	settingsHandler    *handlers.SettingsHandler
	sseHandler         *handlers.SSEHandler

	adminToken     string
	allowedOrigins []string
	metrics        *observability.Metrics
}

// NewRouter creates a new router. sseHandler may be nil when no event bus is configured.
func NewRouter(
	searchEventHandler *handlers.SearchEventHandler,
	suggestionHandler *handlers.SuggestionHandler,
	moderationHandler *handlers.ModerationHandler,
	pageHandler *handlers.PageHandler,
	settingsHandler *handlers.SettingsHandler,
	sseHandler *handlers.SSEHandler,
	adminToken string,
	allowedOrigins []string,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:                http.NewServeMux(),
		searchEventHandler: searchEventHandler,
		suggestionHandler:  suggestionHandler,
		moderationHandler:  moderationHandler,
		pageHandler:        pageHandler,
		settingsHandler:    settingsHandler,
		sseHandler:         sseHandler,
		adminToken:         adminToken,
		allowedOrigins:     allowedOrigins,
		metrics:            metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Search ingestion and public suggestions
	r.mux.HandleFunc("POST /api/search/events", r.searchEventHandler.RecordSearchEvent)
	r.mux.HandleFunc("GET /api/suggestions", r.suggestionHandler.GetSuggestions)
	r.mux.HandleFunc("GET /api/scopes/{id}/suggestions", r.suggestionHandler.GetScopeSuggestions)

	// Pages
	r.mux.HandleFunc("POST /api/admin/pages", middleware.RequireAdmin(r.pageHandler.CreatePage))
	r.mux.HandleFunc("GET /api/admin/pages", middleware.RequireAdmin(r.pageHandler.ListPages))
	r.mux.HandleFunc("GET /api/admin/pages/{id}", middleware.RequireAdmin(r.pageHandler.GetPage))

	// Moderation
	r.mux.HandleFunc("GET /api/admin/scopes/{id}/suggestions", middleware.RequireAdmin(r.moderationHandler.ListSuggestions))
	r.mux.HandleFunc("POST /api/admin/suggestions/{id}/toggle-approval", middleware.RequireAdmin(r.moderationHandler.ToggleApproval))
	r.mux.HandleFunc("POST /api/admin/scopes/{id}/recount", middleware.RequireAdmin(r.moderationHandler.RecountScope))
	r.mux.HandleFunc("GET /api/admin/scopes/{id}/zero-result-terms", middleware.RequireAdmin(r.moderationHandler.GetZeroResultTerms))
	if r.sseHandler != nil {
		r.mux.HandleFunc("GET /api/admin/scopes/{id}/suggestions/stream", middleware.RequireAdmin(r.sseHandler.StreamSuggestionUpdates))
	}

	// Settings
	r.mux.HandleFunc("GET /api/admin/settings", middleware.RequireAdmin(r.settingsHandler.GetSettings))
	r.mux.HandleFunc("PUT /api/admin/settings", middleware.RequireAdmin(r.settingsHandler.UpdateSettings))

	// Apply middleware in reverse order (last middleware wraps first)
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ViewerMiddleware(r.adminToken)(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}
