package repositories

import (
	"context"

	"github.com/zatekoja/search-suggestions/internal/domain/entities"
)

// SearchAnalyticsRepository persists the append-only search event log.
type SearchAnalyticsRepository interface {
	LogEvent(ctx context.Context, event *entities.SearchEvent) error

	// CountQualifying counts events for the normalized term and scope that returned results.
	CountQualifying(ctx context.Context, normalizedTerm, scopeID string) (int, error)

	GetZeroResultQueries(ctx context.Context, scopeID string, limit int) ([]*entities.SearchEvent, error)
}
