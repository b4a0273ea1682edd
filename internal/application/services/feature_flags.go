package services

import (
	"sync/atomic"

	"github.com/zatekoja/search-suggestions/pkg/config"
)

// SearchSettings exposes the process-wide search flags. Implementations must
// be safe for concurrent use; callers read them on every call.
type SearchSettings interface {
	AnalyticsEnabled() bool
	AutomaticApproval() bool
}

// FeatureFlags holds the runtime search flags
type FeatureFlags struct {
	analyticsEnabled  atomic.Bool
	automaticApproval atomic.Bool
}

// NewFeatureFlags seeds the flags from configuration
func NewFeatureFlags(cfg config.SearchConfig) *FeatureFlags {
	flags := &FeatureFlags{}
	flags.analyticsEnabled.Store(cfg.AnalyticsEnabled)
	flags.automaticApproval.Store(cfg.AutomaticApproval)
	return flags
}

func (f *FeatureFlags) AnalyticsEnabled() bool {
	return f.analyticsEnabled.Load()
}

func (f *FeatureFlags) AutomaticApproval() bool {
	return f.automaticApproval.Load()
}

func (f *FeatureFlags) SetAnalyticsEnabled(enabled bool) {
	f.analyticsEnabled.Store(enabled)
}

func (f *FeatureFlags) SetAutomaticApproval(enabled bool) {
	f.automaticApproval.Store(enabled)
}
