package services

import (
	"context"

	"github.com/zatekoja/search-suggestions/internal/domain/entities"
	"github.com/zatekoja/search-suggestions/internal/domain/providers"
	"github.com/zatekoja/search-suggestions/internal/domain/repositories"
)

// DefaultSuggestionLimit is used by Suggest when no positive limit is given
const DefaultSuggestionLimit = 5

// SuggestionReader is the read side of the suggestion store
type SuggestionReader interface {
	Search(ctx context.Context, filter repositories.SuggestionFilter) ([]*entities.Suggestion, error)
}

// SuggestionQueryService serves ranked, moderation-filtered suggestions.
// Short terms and scopes the viewer cannot see produce an empty list, never an error.
type SuggestionQueryService struct {
	reader       SuggestionReader
	access       providers.ScopeAccessChecker
	defaultLimit int
}

// NewSuggestionQueryService creates a new suggestion query service
func NewSuggestionQueryService(reader SuggestionReader, access providers.ScopeAccessChecker) *SuggestionQueryService {
	return &SuggestionQueryService{
		reader:       reader,
		access:       access,
		defaultLimit: DefaultSuggestionLimit,
	}
}

// SetDefaultLimit overrides the limit Suggest applies when none is given
func (s *SuggestionQueryService) SetDefaultLimit(limit int) {
	if limit > 0 {
		s.defaultLimit = limit
	}
}

// Suggest returns up to limit terms of scope starting with term, most frequent
// first. A limit of 0 or less uses the default limit.
func (s *SuggestionQueryService) Suggest(ctx context.Context, term, scopeID string, limit int, approvedOnly bool) ([]string, error) {
	prefix := entities.NormalizeTerm(term)
	if !entities.MeetsMinimumLength(prefix) {
		return []string{}, nil
	}
	if limit <= 0 {
		limit = s.defaultLimit
	}

	return s.query(ctx, repositories.SuggestionFilter{
		ScopeID:  scopeID,
		Prefix:   prefix,
		Approved: approvedOnly,
		Limit:    limit,
	})
}

// SuggestForScope returns the terms of scope, most frequent first. A limit of
// 0 returns every term.
func (s *SuggestionQueryService) SuggestForScope(ctx context.Context, scopeID string, limit int, approvedOnly bool) ([]string, error) {
	if limit < 0 {
		limit = 0
	}

	return s.query(ctx, repositories.SuggestionFilter{
		ScopeID:  scopeID,
		Approved: approvedOnly,
		Limit:    limit,
	})
}

func (s *SuggestionQueryService) query(ctx context.Context, filter repositories.SuggestionFilter) ([]string, error) {
	if filter.ScopeID == "" || !s.access.CanView(ctx, filter.ScopeID) {
		return []string{}, nil
	}

	suggestions, err := s.reader.Search(ctx, filter)
	if err != nil {
		return nil, err
	}

	return uniqueTerms(suggestions), nil
}

// uniqueTerms keeps the first occurrence of every term, preserving rank order
func uniqueTerms(suggestions []*entities.Suggestion) []string {
	terms := make([]string, 0, len(suggestions))
	seen := make(map[string]struct{}, len(suggestions))
	for _, suggestion := range suggestions {
		if _, ok := seen[suggestion.Term]; ok {
			continue
		}
		seen[suggestion.Term] = struct{}{}
		terms = append(terms, suggestion.Term)
	}
	return terms
}
