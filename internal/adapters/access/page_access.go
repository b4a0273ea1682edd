package access

import (
	"context"

	"github.com/zatekoja/search-suggestions/internal/domain/entities"
	"github.com/zatekoja/search-suggestions/internal/domain/providers"
	"github.com/zatekoja/search-suggestions/internal/domain/repositories"
	"github.com/zatekoja/search-suggestions/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/search-suggestions/pkg/errors"
)

// PageAccessChecker grants access to a scope when it names an existing search
// page whose view type admits the request viewer.
type PageAccessChecker struct {
	pages repositories.SearchPageRepository
}

// NewPageAccessChecker creates a new page access checker
func NewPageAccessChecker(pages repositories.SearchPageRepository) providers.ScopeAccessChecker {
	return &PageAccessChecker{pages: pages}
}

// CanView reports whether the viewer on ctx may read the scope. Lookup
// failures deny access.
func (c *PageAccessChecker) CanView(ctx context.Context, scopeID string) bool {
	page, err := c.pages.GetByID(ctx, scopeID)
	if err != nil {
		if !apperrors.IsNotFound(err) {
			observability.LoggerFromContext(ctx).Error().Err(err).Str("scope_id", scopeID).Msg("Failed to load search page for access check")
		}
		return false
	}

	return page.CanView(entities.ViewerFromContext(ctx))
}
