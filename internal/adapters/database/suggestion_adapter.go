package database

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/zatekoja/search-suggestions/internal/domain/entities"
	"github.com/zatekoja/search-suggestions/internal/domain/repositories"
	apperrors "github.com/zatekoja/search-suggestions/pkg/errors"
)

const suggestionsTable = "search_suggestions"

// SuggestionAdapter implements SuggestionRepository. The (term, scope_id)
// uniqueness is enforced by the table constraint, not by this adapter.
type SuggestionAdapter struct {
	db *goqu.Database
}

// NewSuggestionAdapter creates a new suggestion adapter
func NewSuggestionAdapter(client Client) repositories.SuggestionRepository {
	return &SuggestionAdapter{db: newGoqu(client)}
}

func (a *SuggestionAdapter) from() *goqu.SelectDataset {
	return a.db.From(suggestionsTable).Prepared(true)
}

// GetByID retrieves a suggestion by ID
func (a *SuggestionAdapter) GetByID(ctx context.Context, id string) (*entities.Suggestion, error) {
	return a.getOne(ctx, a.from().Where(goqu.Ex{"id": id}))
}

// FindByTerm retrieves the first suggestion for a term within a scope
func (a *SuggestionAdapter) FindByTerm(ctx context.Context, term, scopeID string) (*entities.Suggestion, error) {
	return a.getOne(ctx, a.byTerm(term, scopeID))
}

// ListByTerm retrieves every suggestion row for a term within a scope, oldest first
func (a *SuggestionAdapter) ListByTerm(ctx context.Context, term, scopeID string) ([]*entities.Suggestion, error) {
	return a.list(ctx, a.byTerm(term, scopeID))
}

// ListByScope retrieves every suggestion of a scope, most frequent first
func (a *SuggestionAdapter) ListByScope(ctx context.Context, scopeID string) ([]*entities.Suggestion, error) {
	return a.list(ctx, a.from().
		Where(goqu.Ex{"scope_id": scopeID}).
		Order(goqu.I("frequency").Desc(), goqu.I("term").Asc()))
}

// Search retrieves suggestions matching the filter, most frequent first
func (a *SuggestionAdapter) Search(ctx context.Context, filter repositories.SuggestionFilter) ([]*entities.Suggestion, error) {
	ds := a.from().Where(goqu.Ex{
		"scope_id": filter.ScopeID,
		"approved": filter.Approved,
	})
	if filter.Prefix != "" {
		ds = ds.Where(goqu.L(`term LIKE ? ESCAPE '\'`, escapeLike(filter.Prefix)+"%"))
	}
	ds = ds.Order(goqu.I("frequency").Desc(), goqu.I("term").Asc())
	if filter.Limit > 0 {
		ds = ds.Limit(uint(filter.Limit))
	}

	return a.list(ctx, ds)
}

// Create inserts a suggestion. A duplicate (term, scope) is reported as a CONFLICT error.
func (a *SuggestionAdapter) Create(ctx context.Context, suggestion *entities.Suggestion) error {
	now := time.Now().UTC()
	if suggestion.CreatedAt.IsZero() {
		suggestion.CreatedAt = now
	}
	suggestion.UpdatedAt = now

	record := goqu.Record{
		"id":         suggestion.ID,
		"term":       suggestion.Term,
		"scope_id":   suggestion.ScopeID,
		"frequency":  suggestion.Frequency,
		"approved":   suggestion.Approved,
		"created_at": suggestion.CreatedAt,
		"updated_at": suggestion.UpdatedAt,
	}

	_, err := a.db.Insert(suggestionsTable).Prepared(true).Rows(record).Executor().ExecContext(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflictError("suggestion already exists for term and scope", err)
		}
		return apperrors.NewInternalError("failed to create suggestion", err)
	}

	return nil
}

// Update persists the mutable fields of a suggestion
func (a *SuggestionAdapter) Update(ctx context.Context, suggestion *entities.Suggestion) error {
	suggestion.UpdatedAt = time.Now().UTC()

	result, err := a.db.Update(suggestionsTable).Prepared(true).
		Set(goqu.Record{
			"frequency":  suggestion.Frequency,
			"approved":   suggestion.Approved,
			"updated_at": suggestion.UpdatedAt,
		}).
		Where(goqu.Ex{"id": suggestion.ID}).
		Executor().ExecContext(ctx)
	if err != nil {
		return apperrors.NewInternalError("failed to update suggestion", err)
	}

	return expectAffected(result.RowsAffected, "suggestion not found")
}

// Delete removes a suggestion
func (a *SuggestionAdapter) Delete(ctx context.Context, suggestion *entities.Suggestion) error {
	result, err := a.db.Delete(suggestionsTable).Prepared(true).
		Where(goqu.Ex{"id": suggestion.ID}).
		Executor().ExecContext(ctx)
	if err != nil {
		return apperrors.NewInternalError("failed to delete suggestion", err)
	}

	return expectAffected(result.RowsAffected, "suggestion not found")
}

func (a *SuggestionAdapter) byTerm(term, scopeID string) *goqu.SelectDataset {
	return a.from().
		Where(goqu.Ex{"term": term, "scope_id": scopeID}).
		Order(goqu.I("created_at").Asc(), goqu.I("id").Asc())
}

func (a *SuggestionAdapter) getOne(ctx context.Context, ds *goqu.SelectDataset) (*entities.Suggestion, error) {
	var suggestion entities.Suggestion
	found, err := ds.ScanStructContext(ctx, &suggestion)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get suggestion", err)
	}
	if !found {
		return nil, apperrors.NewNotFoundError("suggestion not found")
	}
	return &suggestion, nil
}

func (a *SuggestionAdapter) list(ctx context.Context, ds *goqu.SelectDataset) ([]*entities.Suggestion, error) {
	var rows []entities.Suggestion
	if err := ds.ScanStructsContext(ctx, &rows); err != nil {
		return nil, apperrors.NewInternalError("failed to list suggestions", err)
	}

	suggestions := make([]*entities.Suggestion, len(rows))
	for i := range rows {
		suggestions[i] = &rows[i]
	}
	return suggestions, nil
}

func expectAffected(rowsAffected func() (int64, error), notFoundMessage string) error {
	n, err := rowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to read affected rows", err)
	}
	if n == 0 {
		return apperrors.NewNotFoundError(notFoundMessage)
	}
	return nil
}
