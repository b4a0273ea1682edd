package database_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/search-suggestions/internal/adapters/database"
	"github.com/zatekoja/search-suggestions/internal/domain/entities"
	"github.com/zatekoja/search-suggestions/internal/domain/repositories"
	"github.com/zatekoja/search-suggestions/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/search-suggestions/internal/infrastructure/clients/sqlite/sqlitetest"
	apperrors "github.com/zatekoja/search-suggestions/pkg/errors"
)

func newSuggestion(id, term, scopeID string, frequency int, approved bool) *entities.Suggestion {
	return &entities.Suggestion{ID: id, Term: term, ScopeID: scopeID, Frequency: frequency, Approved: approved}
}

func TestSuggestionAdapter_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	adapter := database.NewSuggestionAdapter(sqlitetest.NewClient(t))

	suggestion := newSuggestion("s-1", "cats", "page-1", 1, false)
	require.NoError(t, adapter.Create(ctx, suggestion))
	assert.False(t, suggestion.CreatedAt.IsZero())

	found, err := adapter.FindByTerm(ctx, "cats", "page-1")
	require.NoError(t, err)
	assert.Equal(t, "s-1", found.ID)
	assert.Equal(t, 1, found.Frequency)
	assert.False(t, found.Approved)

	byID, err := adapter.GetByID(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, "cats", byID.Term)

	_, err = adapter.FindByTerm(ctx, "cats", "page-2")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestSuggestionAdapter_CreateDuplicateIsConflict(t *testing.T) {
	ctx := context.Background()
	adapter := database.NewSuggestionAdapter(sqlitetest.NewClient(t))

	require.NoError(t, adapter.Create(ctx, newSuggestion("s-1", "cats", "page-1", 1, false)))

	err := adapter.Create(ctx, newSuggestion("s-2", "cats", "page-1", 1, false))
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err), "expected conflict, got %v", err)

	require.NoError(t, adapter.Create(ctx, newSuggestion("s-3", "cats", "page-2", 1, false)))
}

func TestSuggestionAdapter_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	adapter := database.NewSuggestionAdapter(sqlitetest.NewClient(t))

	suggestion := newSuggestion("s-1", "cats", "page-1", 1, false)
	require.NoError(t, adapter.Create(ctx, suggestion))

	suggestion.Frequency = 7
	suggestion.Approved = true
	require.NoError(t, adapter.Update(ctx, suggestion))

	reloaded, err := adapter.GetByID(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, 7, reloaded.Frequency)
	assert.True(t, reloaded.Approved)

	require.NoError(t, adapter.Delete(ctx, suggestion))
	assert.True(t, apperrors.IsNotFound(adapter.Delete(ctx, suggestion)))
	assert.True(t, apperrors.IsNotFound(adapter.Update(ctx, suggestion)))

	_, err = adapter.GetByID(ctx, "s-1")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestSuggestionAdapter_SearchRanksAndFilters(t *testing.T) {
	ctx := context.Background()
	adapter := database.NewSuggestionAdapter(sqlitetest.NewClient(t))

	for _, s := range []*entities.Suggestion{
		newSuggestion("s-1", "cat food", "page-1", 5, true),
		newSuggestion("s-2", "cats", "page-1", 9, true),
		newSuggestion("s-3", "catalog", "page-1", 1, true),
		newSuggestion("s-4", "cat toys", "page-1", 20, false),
		newSuggestion("s-5", "dogs", "page-1", 50, true),
		newSuggestion("s-6", "cats", "page-2", 99, true),
	} {
		require.NoError(t, adapter.Create(ctx, s))
	}

	results, err := adapter.Search(ctx, repositories.SuggestionFilter{ScopeID: "page-1", Prefix: "cat", Approved: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"cats", "cat food", "catalog"}, terms(results))

	limited, err := adapter.Search(ctx, repositories.SuggestionFilter{ScopeID: "page-1", Prefix: "cat", Approved: true, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"cats", "cat food"}, terms(limited))

	pending, err := adapter.Search(ctx, repositories.SuggestionFilter{ScopeID: "page-1", Approved: false})
	require.NoError(t, err)
	assert.Equal(t, []string{"cat toys"}, terms(pending))

	all, err := adapter.ListByScope(ctx, "page-1")
	require.NoError(t, err)
	assert.Len(t, all, 5)
	assert.Equal(t, "dogs", all[0].Term)
}

func TestSuggestionAdapter_SearchEscapesWildcards(t *testing.T) {
	ctx := context.Background()
	adapter := database.NewSuggestionAdapter(sqlitetest.NewClient(t))

	for _, s := range []*entities.Suggestion{
		newSuggestion("s-1", "50% off", "page-1", 3, true),
		newSuggestion("s-2", "500 cents", "page-1", 2, true),
		newSuggestion("s-3", "a_b test", "page-1", 2, true),
		newSuggestion("s-4", "axb test", "page-1", 1, true),
	} {
		require.NoError(t, adapter.Create(ctx, s))
	}

	percent, err := adapter.Search(ctx, repositories.SuggestionFilter{ScopeID: "page-1", Prefix: "50%", Approved: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"50% off"}, terms(percent))

	underscore, err := adapter.Search(ctx, repositories.SuggestionFilter{ScopeID: "page-1", Prefix: "a_", Approved: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"a_b test"}, terms(underscore))
}

func TestSuggestionAdapter_ListByTermIsOldestFirst(t *testing.T) {
	ctx := context.Background()
	adapter := database.NewSuggestionAdapter(sqlitetest.NewClient(t))

	older := newSuggestion("s-b", "cats", "page-1", 1, false)
	older.CreatedAt = time.Now().UTC().Add(-time.Hour)
	require.NoError(t, adapter.Create(ctx, older))

	rows, err := adapter.ListByTerm(ctx, "cats", "page-1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "s-b", rows[0].ID)

	empty, err := adapter.ListByTerm(ctx, "dogs", "page-1")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestSuggestionAdapter_PostgresUniqueViolationIsConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "search_suggestions"`)).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "search_suggestions"`)).
		WillReturnError(&pq.Error{Code: "23503", Message: "foreign key violation"})

	adapter := database.NewSuggestionAdapter(postgres.NewClientFromDB(db))

	err = adapter.Create(context.Background(), newSuggestion("s-1", "cats", "page-1", 1, false))
	assert.True(t, apperrors.IsConflict(err))

	err = adapter.Create(context.Background(), newSuggestion("s-2", "dogs", "page-1", 1, false))
	require.Error(t, err)
	assert.False(t, apperrors.IsConflict(err))
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInternal))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func terms(suggestions []*entities.Suggestion) []string {
	out := make([]string, len(suggestions))
	for i, s := range suggestions {
		out[i] = s.Term
	}
	return out
}
