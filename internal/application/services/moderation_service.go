package services

import (
	"context"

	"github.com/zatekoja/search-suggestions/internal/domain/entities"
	"github.com/zatekoja/search-suggestions/internal/domain/providers"
	"github.com/zatekoja/search-suggestions/internal/domain/repositories"
	"github.com/zatekoja/search-suggestions/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/search-suggestions/pkg/errors"
)

// ModerationService handles the approve/disapprove workflow
type ModerationService struct {
	suggestions repositories.SuggestionRepository
	eventBus    providers.EventBus
	metrics     *observability.Metrics
}

// NewModerationService creates a new moderation service
func NewModerationService(suggestions repositories.SuggestionRepository) *ModerationService {
	return &ModerationService{suggestions: suggestions}
}

// SetEventBus enables publishing approval changes
func (s *ModerationService) SetEventBus(eventBus providers.EventBus) {
	s.eventBus = eventBus
}

// SetMetrics enables approval toggle metrics
func (s *ModerationService) SetMetrics(metrics *observability.Metrics) {
	s.metrics = metrics
}

// ToggleApproval flips the approval of a suggestion and returns a confirmation
// such as `Approved "cats"!`. An unknown id yields an empty message and no error.
func (s *ModerationService) ToggleApproval(ctx context.Context, suggestionID string) (string, error) {
	suggestion, err := s.suggestions.GetByID(ctx, suggestionID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return "", nil
		}
		return "", err
	}

	suggestion.Approved = !suggestion.Approved
	if err := s.suggestions.Update(ctx, suggestion); err != nil {
		if apperrors.IsNotFound(err) {
			return "", nil
		}
		return "", err
	}

	observability.RecordApprovalToggle(ctx, s.metrics, suggestion.Approved)
	observability.EmitAudit(ctx, observability.AuditRecord{
		Action:       string(entities.SuggestionEventApprovalToggled),
		SuggestionID: suggestion.ID,
		ScopeID:      suggestion.ScopeID,
		Term:         suggestion.Term,
		Approved:     suggestion.Approved,
	})
	publishSuggestionEvent(ctx, s.eventBus, entities.SuggestionEventApprovalToggled, suggestion)

	return suggestion.ApprovalMessage(), nil
}

// ListForModeration returns full suggestion records of a scope in the given
// approval state, most frequent first. A limit of 0 returns every row.
func (s *ModerationService) ListForModeration(ctx context.Context, scopeID string, approved bool, limit int) ([]*entities.Suggestion, error) {
	if scopeID == "" {
		return nil, apperrors.NewValidationError("scope is required")
	}
	if limit < 0 {
		return nil, apperrors.NewValidationError("limit must not be negative")
	}

	return s.suggestions.Search(ctx, repositories.SuggestionFilter{
		ScopeID:  scopeID,
		Approved: approved,
		Limit:    limit,
	})
}
