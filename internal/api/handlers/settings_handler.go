package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/zatekoja/search-suggestions/internal/application/services"
)

// SettingsManager defines the runtime settings operations used by the handler.
type SettingsManager interface {
	Get() services.Settings
	Update(ctx context.Context, update services.SettingsUpdate) services.Settings
}

// SettingsHandler exposes the runtime search flags.
type SettingsHandler struct {
	settings SettingsManager
}

// NewSettingsHandler creates a new settings handler.
func NewSettingsHandler(settings SettingsManager) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// GetSettings handles GET /api/admin/settings
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.settings.Get())
}

// UpdateSettings handles PUT /api/admin/settings
func (h *SettingsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var payload services.SettingsUpdate
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	respondWithJSON(w, http.StatusOK, h.settings.Update(r.Context(), payload))
}
