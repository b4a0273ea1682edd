package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/zatekoja/search-suggestions/internal/domain/entities"
	"github.com/zatekoja/search-suggestions/internal/domain/providers"
	"github.com/zatekoja/search-suggestions/internal/domain/repositories"
	"github.com/zatekoja/search-suggestions/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/search-suggestions/pkg/errors"
)

// SearchRecord is a completed search as reported by the transport
type SearchRecord struct {
	Term        string
	Results     int
	ElapsedTime float64
	Engine      string
	ScopeID     string
}

// SearchAnalyticsService logs search events and maintains the suggestion
// ledger derived from them.
//
// Suggestions are upserted without locks: a lost insert race surfaces as a
// CONFLICT from the repository and is resolved by repair, which collapses the
// (term, scope) rows to the oldest one and recounts its frequency.
type SearchAnalyticsService struct {
	events      repositories.SearchAnalyticsRepository
	suggestions repositories.SuggestionRepository
	settings    SearchSettings
	eventBus    providers.EventBus
	metrics     *observability.Metrics
}

// NewSearchAnalyticsService creates a new search analytics service
func NewSearchAnalyticsService(
	events repositories.SearchAnalyticsRepository,
	suggestions repositories.SuggestionRepository,
	settings SearchSettings,
) *SearchAnalyticsService {
	return &SearchAnalyticsService{
		events:      events,
		suggestions: suggestions,
		settings:    settings,
	}
}

// SetEventBus enables publishing suggestion changes
func (s *SearchAnalyticsService) SetEventBus(eventBus providers.EventBus) {
	s.eventBus = eventBus
}

// SetMetrics enables suggestion write metrics
func (s *SearchAnalyticsService) SetMetrics(metrics *observability.Metrics) {
	s.metrics = metrics
}

// RecordSearch logs a search event and, when it produced results, records the
// term as a suggestion. It returns nil without error when analytics is disabled.
func (s *SearchAnalyticsService) RecordSearch(ctx context.Context, record SearchRecord) (*entities.SearchEvent, error) {
	if !s.settings.AnalyticsEnabled() {
		return nil, nil
	}

	if record.ScopeID == "" {
		return nil, apperrors.NewValidationError("scope is required")
	}
	if record.Results < 0 {
		return nil, apperrors.NewValidationError("results must not be negative")
	}
	if record.ElapsedTime < 0 {
		return nil, apperrors.NewValidationError("elapsed time must not be negative")
	}

	ctx, span := observability.StartSpan(ctx, "SearchAnalyticsService.RecordSearch")
	defer span.End()
	observability.SetSpanAttributes(span,
		attribute.String("search.scope_id", record.ScopeID),
		attribute.Int("search.results", record.Results),
	)

	event := &entities.SearchEvent{
		ID:             uuid.New().String(),
		Term:           record.Term,
		NormalizedTerm: entities.NormalizeTerm(record.Term),
		Results:        record.Results,
		ElapsedTime:    record.ElapsedTime,
		Engine:         record.Engine,
		ScopeID:        record.ScopeID,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.events.LogEvent(ctx, event); err != nil {
		observability.RecordError(span, err)
		return nil, err
	}
	observability.RecordSearchEvent(ctx, s.metrics, event.ScopeID, event.Qualifies())

	if event.Qualifies() {
		if _, err := s.RecordSuggestion(ctx, record.Term, record.ScopeID); err != nil {
			observability.RecordError(span, err)
			return nil, err
		}
	}

	return event, nil
}

// RecordSuggestion creates or refreshes the suggestion for term in scope. It
// returns nil without error when analytics is disabled or the term is too short.
func (s *SearchAnalyticsService) RecordSuggestion(ctx context.Context, term, scopeID string) (*entities.Suggestion, error) {
	if !s.settings.AnalyticsEnabled() {
		return nil, nil
	}

	normalized := entities.NormalizeTerm(term)
	if !entities.MeetsMinimumLength(normalized) {
		return nil, nil
	}

	existing, err := s.suggestions.FindByTerm(ctx, normalized, scopeID)
	if err != nil && !apperrors.IsNotFound(err) {
		return s.failed(ctx, err)
	}

	frequency, err := s.events.CountQualifying(ctx, normalized, scopeID)
	if err != nil {
		return s.failed(ctx, err)
	}

	if existing != nil {
		existing.Frequency = frequency
		err := s.suggestions.Update(ctx, existing)
		switch {
		case err == nil:
			s.written(ctx, entities.SuggestionEventFrequency, observability.OutcomeUpdated, existing)
			return existing, nil
		case apperrors.IsNotFound(err):
			return s.repair(ctx, normalized, scopeID)
		default:
			return s.failed(ctx, err)
		}
	}

	suggestion := &entities.Suggestion{
		ID:        uuid.New().String(),
		Term:      normalized,
		ScopeID:   scopeID,
		Frequency: frequency,
		Approved:  s.settings.AutomaticApproval(),
	}

	err = s.suggestions.Create(ctx, suggestion)
	switch {
	case err == nil:
		s.written(ctx, entities.SuggestionEventCreated, observability.OutcomeCreated, suggestion)
		return suggestion, nil
	case apperrors.IsConflict(err):
		return s.repair(ctx, normalized, scopeID)
	default:
		return s.failed(ctx, err)
	}
}

// repair collapses the rows for (term, scope) to the oldest one and recounts
// it. Concurrent repairers all keep the same row, so they converge.
func (s *SearchAnalyticsService) repair(ctx context.Context, term, scopeID string) (*entities.Suggestion, error) {
	logger := observability.LoggerFromContext(ctx)
	logger.Info().Str("term", term).Str("scope_id", scopeID).Msg("Repairing suggestion after write race")

	rows, err := s.suggestions.ListByTerm(ctx, term, scopeID)
	if err != nil {
		return s.failed(ctx, err)
	}

	for len(rows) > 1 {
		duplicate := rows[len(rows)-1]
		if err := s.suggestions.Delete(ctx, duplicate); err != nil && !apperrors.IsNotFound(err) {
			return s.failed(ctx, err)
		}
		logger.Warn().Str("suggestion_id", duplicate.ID).Str("term", term).Str("scope_id", scopeID).Msg("Deleted duplicate suggestion")
		rows = rows[:len(rows)-1]
	}

	frequency, err := s.events.CountQualifying(ctx, term, scopeID)
	if err != nil {
		return s.failed(ctx, err)
	}

	if len(rows) == 0 {
		return s.recreate(ctx, term, scopeID, frequency)
	}

	survivor := rows[0]
	survivor.Frequency = frequency
	if err := s.suggestions.Update(ctx, survivor); err != nil {
		return s.failed(ctx, err)
	}

	s.written(ctx, entities.SuggestionEventRepaired, observability.OutcomeRepaired, survivor)
	return survivor, nil
}

// recreate is the single insert attempted when repair found no row left.
// Losing that insert means another writer already restored the row.
func (s *SearchAnalyticsService) recreate(ctx context.Context, term, scopeID string, frequency int) (*entities.Suggestion, error) {
	suggestion := &entities.Suggestion{
		ID:        uuid.New().String(),
		Term:      term,
		ScopeID:   scopeID,
		Frequency: frequency,
		Approved:  s.settings.AutomaticApproval(),
	}

	err := s.suggestions.Create(ctx, suggestion)
	if err == nil {
		s.written(ctx, entities.SuggestionEventRepaired, observability.OutcomeRepaired, suggestion)
		return suggestion, nil
	}
	if !apperrors.IsConflict(err) {
		return s.failed(ctx, err)
	}

	winner, err := s.suggestions.FindByTerm(ctx, term, scopeID)
	if err != nil {
		return s.failed(ctx, err)
	}
	return winner, nil
}

// RecountScope recomputes the frequency of every suggestion in a scope and
// returns how many rows changed.
func (s *SearchAnalyticsService) RecountScope(ctx context.Context, scopeID string) (int, error) {
	suggestions, err := s.suggestions.ListByScope(ctx, scopeID)
	if err != nil {
		return 0, err
	}

	changed := 0
	for _, suggestion := range suggestions {
		frequency, err := s.events.CountQualifying(ctx, suggestion.Term, scopeID)
		if err != nil {
			return changed, err
		}
		if frequency == suggestion.Frequency {
			continue
		}

		suggestion.Frequency = frequency
		if err := s.suggestions.Update(ctx, suggestion); err != nil {
			if apperrors.IsNotFound(err) {
				continue
			}
			return changed, err
		}
		changed++
		s.written(ctx, entities.SuggestionEventFrequency, observability.OutcomeUpdated, suggestion)
	}

	observability.LoggerFromContext(ctx).Info().
		Str("scope_id", scopeID).
		Int("suggestions", len(suggestions)).
		Int("changed", changed).
		Msg("Recounted suggestion frequencies")

	return changed, nil
}

// ZeroResultTerms returns the latest searches in a scope that found nothing
func (s *SearchAnalyticsService) ZeroResultTerms(ctx context.Context, scopeID string, limit int) ([]*entities.SearchEvent, error) {
	return s.events.GetZeroResultQueries(ctx, scopeID, limit)
}

func (s *SearchAnalyticsService) written(ctx context.Context, eventType entities.SuggestionEventType, outcome string, suggestion *entities.Suggestion) {
	observability.RecordSuggestionWrite(ctx, s.metrics, outcome)
	publishSuggestionEvent(ctx, s.eventBus, eventType, suggestion)
}

func (s *SearchAnalyticsService) failed(ctx context.Context, err error) (*entities.Suggestion, error) {
	observability.RecordSuggestionWrite(ctx, s.metrics, observability.OutcomeFailed)
	return nil, err
}

func publishSuggestionEvent(ctx context.Context, eventBus providers.EventBus, eventType entities.SuggestionEventType, suggestion *entities.Suggestion) {
	if eventBus == nil {
		return
	}

	event := entities.NewSuggestionEvent(eventType, suggestion)
	if err := eventBus.Publish(ctx, providers.GetSuggestionChannel(suggestion.ScopeID), event); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).
			Str("suggestion_id", suggestion.ID).
			Str("event_type", string(eventType)).
			Msg("Failed to publish suggestion event")
	}
}
