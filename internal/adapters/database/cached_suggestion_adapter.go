package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/zatekoja/search-suggestions/internal/domain/entities"
	"github.com/zatekoja/search-suggestions/internal/domain/providers"
	"github.com/zatekoja/search-suggestions/internal/domain/repositories"
	"github.com/zatekoja/search-suggestions/internal/infrastructure/observability"
)

// suggestionSearchTTL bounds how long a ranking can be served after a write
// whose invalidation failed.
const suggestionSearchTTL = 120

// CachedSuggestionAdapter wraps a SuggestionRepository with a read-through
// cache for ranked searches. Every write drops the cached rankings of its scope
// before returning.
type CachedSuggestionAdapter struct {
	adapter repositories.SuggestionRepository
	cache   providers.CacheProvider
	metrics *observability.Metrics
}

// NewCachedSuggestionAdapter creates a new cached suggestion adapter
func NewCachedSuggestionAdapter(adapter repositories.SuggestionRepository, cache providers.CacheProvider, metrics *observability.Metrics) repositories.SuggestionRepository {
	return &CachedSuggestionAdapter{
		adapter: adapter,
		cache:   cache,
		metrics: metrics,
	}
}

func suggestionSearchCacheKey(filter repositories.SuggestionFilter) string {
	return fmt.Sprintf("suggestions:%s:%t:%d:%s", filter.ScopeID, filter.Approved, filter.Limit, filter.Prefix)
}

func suggestionScopePattern(scopeID string) string {
	return fmt.Sprintf("suggestions:%s:*", scopeID)
}

// Search retrieves ranked suggestions, from cache when possible
func (a *CachedSuggestionAdapter) Search(ctx context.Context, filter repositories.SuggestionFilter) ([]*entities.Suggestion, error) {
	cacheKey := suggestionSearchCacheKey(filter)

	if cached, err := a.cache.Get(ctx, cacheKey); err == nil && len(cached) > 0 {
		var suggestions []*entities.Suggestion
		unmarshalErr := json.Unmarshal(cached, &suggestions)
		if unmarshalErr == nil {
			observability.RecordCacheHit(ctx, a.metrics, "suggestions:search")
			return suggestions, nil
		}
		observability.LoggerFromContext(ctx).Warn().Err(unmarshalErr).Str("key", cacheKey).Msg("Failed to unmarshal cached suggestions")
	}
	observability.RecordCacheMiss(ctx, a.metrics, "suggestions:search")

	start := time.Now()
	suggestions, err := a.adapter.Search(ctx, filter)
	observability.RecordDBMetric(ctx, a.metrics, "suggestions.search", time.Since(start))
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(suggestions); err == nil {
		if err := a.cache.Set(ctx, cacheKey, data, suggestionSearchTTL); err != nil {
			observability.LoggerFromContext(ctx).Warn().Err(err).Str("key", cacheKey).Msg("Failed to cache suggestions")
		}
	}

	return suggestions, nil
}

// GetByID retrieves a suggestion by ID
func (a *CachedSuggestionAdapter) GetByID(ctx context.Context, id string) (*entities.Suggestion, error) {
	return a.adapter.GetByID(ctx, id)
}

// FindByTerm retrieves the suggestion for a term within a scope
func (a *CachedSuggestionAdapter) FindByTerm(ctx context.Context, term, scopeID string) (*entities.Suggestion, error) {
	return a.adapter.FindByTerm(ctx, term, scopeID)
}

// ListByTerm retrieves every row for a term within a scope
func (a *CachedSuggestionAdapter) ListByTerm(ctx context.Context, term, scopeID string) ([]*entities.Suggestion, error) {
	return a.adapter.ListByTerm(ctx, term, scopeID)
}

// ListByScope retrieves every suggestion of a scope
func (a *CachedSuggestionAdapter) ListByScope(ctx context.Context, scopeID string) ([]*entities.Suggestion, error) {
	return a.adapter.ListByScope(ctx, scopeID)
}

// Create inserts a suggestion and invalidates its scope
func (a *CachedSuggestionAdapter) Create(ctx context.Context, suggestion *entities.Suggestion) error {
	if err := a.adapter.Create(ctx, suggestion); err != nil {
		return err
	}
	a.invalidateScope(ctx, suggestion.ScopeID)
	return nil
}

// Update persists a suggestion and invalidates its scope
func (a *CachedSuggestionAdapter) Update(ctx context.Context, suggestion *entities.Suggestion) error {
	if err := a.adapter.Update(ctx, suggestion); err != nil {
		return err
	}
	a.invalidateScope(ctx, suggestion.ScopeID)
	return nil
}

// Delete removes a suggestion and invalidates its scope
func (a *CachedSuggestionAdapter) Delete(ctx context.Context, suggestion *entities.Suggestion) error {
	if err := a.adapter.Delete(ctx, suggestion); err != nil {
		return err
	}
	a.invalidateScope(ctx, suggestion.ScopeID)
	return nil
}

func (a *CachedSuggestionAdapter) invalidateScope(ctx context.Context, scopeID string) {
	if err := a.cache.DeletePattern(ctx, suggestionScopePattern(scopeID)); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("scope_id", scopeID).Msg("Failed to invalidate suggestion cache")
	}
}
