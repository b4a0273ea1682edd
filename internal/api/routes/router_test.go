package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/search-suggestions/internal/adapters/access"
	"github.com/zatekoja/search-suggestions/internal/adapters/database"
	"github.com/zatekoja/search-suggestions/internal/api/handlers"
	"github.com/zatekoja/search-suggestions/internal/application/services"
	"github.com/zatekoja/search-suggestions/internal/infrastructure/clients/sqlite/sqlitetest"
	queryservices "github.com/zatekoja/search-suggestions/internal/query/services"
	"github.com/zatekoja/search-suggestions/pkg/config"
)

const testAdminToken = "moderator-token"

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()

	store := sqlitetest.NewClient(t)
	flags := services.NewFeatureFlags(config.SearchConfig{AnalyticsEnabled: true})
	pages := database.NewSearchPageAdapter(store)
	suggestions := database.NewSuggestionAdapter(store)
	analytics := services.NewSearchAnalyticsService(database.NewSearchAnalyticsAdapter(store), suggestions, flags)

	checker := access.NewPageAccessChecker(pages)

	router := NewRouter(
		handlers.NewSearchEventHandler(analytics, checker, nil, 0),
		handlers.NewSuggestionHandler(queryservices.NewSuggestionQueryService(suggestions, checker)),
		handlers.NewModerationHandler(services.NewModerationService(suggestions), analytics),
		handlers.NewPageHandler(services.NewSearchPageService(pages)),
		handlers.NewSettingsHandler(services.NewSettingsService(flags)),
		nil,
		testAdminToken,
		[]string{"*"},
		nil,
	)
	return router.SetupRoutes()
}

func TestRouter_Health(t *testing.T) {
	handler := newTestHandler(t)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}

func TestRouter_AdminRoutesRequireToken(t *testing.T) {
	handler := newTestHandler(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/admin/settings"},
		{http.MethodPut, "/api/admin/settings"},
		{http.MethodGet, "/api/admin/pages"},
		{http.MethodPost, "/api/admin/suggestions/s-1/toggle-approval"},
		{http.MethodPost, "/api/admin/scopes/page-1/recount"},
	}

	for _, p := range paths {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(p.method, p.path, nil)
		req.Header.Set("Authorization", "Bearer wrong")
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", p.method, p.path)
	}
}

func TestRouter_AdminFlow(t *testing.T) {
	handler := newTestHandler(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/admin/pages", strings.NewReader(`{"title":"Docs"}`))
	req.Header.Set("Authorization", "Bearer "+testAdminToken)
	handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)
	var page struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&page))

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/admin/settings", nil)
	req.Header.Set("Authorization", "Bearer "+testAdminToken)
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"analytics_enabled":true,"automatic_approval":false}`, w.Body.String())

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/search/events",
		strings.NewReader(`{"term":"pricing","results":2,"scope":"`+page.ID+`"}`))
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/search/events",
		strings.NewReader(`{"term":"pricing","results":2,"scope":"page-1"}`))
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
