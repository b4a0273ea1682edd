package services

import (
	"context"

	"github.com/zatekoja/search-suggestions/internal/infrastructure/observability"
)

// Settings is the externally visible state of the runtime flags
type Settings struct {
	AnalyticsEnabled  bool `json:"analytics_enabled"`
	AutomaticApproval bool `json:"automatic_approval"`
}

// SettingsUpdate changes only the fields that are set
type SettingsUpdate struct {
	AnalyticsEnabled  *bool `json:"analytics_enabled"`
	AutomaticApproval *bool `json:"automatic_approval"`
}

// SettingsService reads and changes the runtime flags
type SettingsService struct {
	flags *FeatureFlags
}

// NewSettingsService creates a new settings service
func NewSettingsService(flags *FeatureFlags) *SettingsService {
	return &SettingsService{flags: flags}
}

// Get returns the current flags
func (s *SettingsService) Get() Settings {
	return Settings{
		AnalyticsEnabled:  s.flags.AnalyticsEnabled(),
		AutomaticApproval: s.flags.AutomaticApproval(),
	}
}

// Update applies the set fields and returns the resulting flags
func (s *SettingsService) Update(ctx context.Context, update SettingsUpdate) Settings {
	if update.AnalyticsEnabled != nil {
		s.flags.SetAnalyticsEnabled(*update.AnalyticsEnabled)
	}
	if update.AutomaticApproval != nil {
		s.flags.SetAutomaticApproval(*update.AutomaticApproval)
	}

	current := s.Get()
	observability.LoggerFromContext(ctx).Info().
		Bool("analytics_enabled", current.AnalyticsEnabled).
		Bool("automatic_approval", current.AutomaticApproval).
		Msg("Search settings updated")
	observability.EmitAudit(ctx, observability.AuditRecord{Action: "settings_updated"})

	return current
}
