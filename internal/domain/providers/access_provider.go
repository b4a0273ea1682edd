package providers

import "context"

// ScopeAccessChecker decides whether the current viewer may read a scope's suggestions.
type ScopeAccessChecker interface {
	CanView(ctx context.Context, scopeID string) bool
}
