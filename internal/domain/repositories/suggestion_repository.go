package repositories

import (
	"context"

	"github.com/zatekoja/search-suggestions/internal/domain/entities"
)

// SuggestionFilter defines the read-side filter for suggestions.
type SuggestionFilter struct {
	ScopeID  string
	Prefix   string // already normalized; empty means no prefix filter
	Approved bool
	Limit    int // 0 means unlimited
}

// SuggestionRepository persists suggestions. Implementations must enforce a
// uniqueness constraint on (term, scope) and report a violation on Create as a
// CONFLICT AppError so callers can tell a lost race from any other failure.
type SuggestionRepository interface {
	GetByID(ctx context.Context, id string) (*entities.Suggestion, error)

	// FindByTerm returns the first suggestion for the pair, or a NOT_FOUND error.
	FindByTerm(ctx context.Context, term, scopeID string) (*entities.Suggestion, error)

	// ListByTerm returns every row for the pair in natural order (created_at, id).
	// More than one row only exists while a race has not been repaired.
	ListByTerm(ctx context.Context, term, scopeID string) ([]*entities.Suggestion, error)

	// ListByScope returns every suggestion of a scope regardless of approval.
	ListByScope(ctx context.Context, scopeID string) ([]*entities.Suggestion, error)

	// Search returns suggestions matching the filter ordered by frequency descending.
	Search(ctx context.Context, filter SuggestionFilter) ([]*entities.Suggestion, error)

	Create(ctx context.Context, suggestion *entities.Suggestion) error
	Update(ctx context.Context, suggestion *entities.Suggestion) error
	Delete(ctx context.Context, suggestion *entities.Suggestion) error
}
