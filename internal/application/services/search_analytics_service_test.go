package services_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/search-suggestions/internal/adapters/database"
	"github.com/zatekoja/search-suggestions/internal/application/services"
	"github.com/zatekoja/search-suggestions/internal/domain/entities"
	"github.com/zatekoja/search-suggestions/internal/domain/repositories"
	"github.com/zatekoja/search-suggestions/internal/infrastructure/clients/sqlite/sqlitetest"
	"github.com/zatekoja/search-suggestions/pkg/config"
	apperrors "github.com/zatekoja/search-suggestions/pkg/errors"
)

type ledger struct {
	service     *services.SearchAnalyticsService
	flags       *services.FeatureFlags
	events      repositories.SearchAnalyticsRepository
	suggestions repositories.SuggestionRepository
	bus         *MockEventBus
}

func newLedger(t *testing.T, automaticApproval bool) *ledger {
	t.Helper()

	client := sqlitetest.NewClient(t)
	l := &ledger{
		flags:       services.NewFeatureFlags(config.SearchConfig{AnalyticsEnabled: true, AutomaticApproval: automaticApproval}),
		events:      database.NewSearchAnalyticsAdapter(client),
		suggestions: database.NewSuggestionAdapter(client),
		bus:         NewMockEventBus(),
	}
	l.service = services.NewSearchAnalyticsService(l.events, l.suggestions, l.flags)
	l.service.SetEventBus(l.bus)
	return l
}

func TestRecordSearch_CreatesSuggestionForQualifyingEvent(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t, false)

	event, err := l.service.RecordSearch(ctx, services.SearchRecord{Term: "Cats", Results: 3, ElapsedTime: 0.2, Engine: "db", ScopeID: "page-1"})
	require.NoError(t, err)
	require.NotNil(t, event)
	assert.Equal(t, "Cats", event.Term)
	assert.Equal(t, "cats", event.NormalizedTerm)

	suggestion, err := l.suggestions.FindByTerm(ctx, "cats", "page-1")
	require.NoError(t, err)
	assert.Equal(t, 1, suggestion.Frequency)
	assert.False(t, suggestion.Approved)
	assert.Equal(t, []entities.SuggestionEventType{entities.SuggestionEventCreated}, l.bus.EventTypes())
	assert.Equal(t, []string{"suggestions:page-1"}, l.bus.Channels())
}

func TestRecordSearch_ZeroResultsLogsEventOnly(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t, false)

	event, err := l.service.RecordSearch(ctx, services.SearchRecord{Term: "unicorns", Results: 0, ScopeID: "page-1"})
	require.NoError(t, err)
	require.NotNil(t, event)

	_, err = l.suggestions.FindByTerm(ctx, "unicorns", "page-1")
	assert.True(t, apperrors.IsNotFound(err))

	zero, err := l.service.ZeroResultTerms(ctx, "page-1", 10)
	require.NoError(t, err)
	require.Len(t, zero, 1)
	assert.Equal(t, "unicorns", zero[0].Term)
}

func TestRecordSearch_AnalyticsDisabledIsNoOp(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t, true)
	l.flags.SetAnalyticsEnabled(false)

	event, err := l.service.RecordSearch(ctx, services.SearchRecord{Term: "cats", Results: 10, ScopeID: "page-1"})
	assert.NoError(t, err)
	assert.Nil(t, event)

	suggestion, err := l.service.RecordSuggestion(ctx, "cats", "page-1")
	assert.NoError(t, err)
	assert.Nil(t, suggestion)

	count, err := l.events.CountQualifying(ctx, "cats", "page-1")
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = l.suggestions.FindByTerm(ctx, "cats", "page-1")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestRecordSearch_RejectsInvalidRecords(t *testing.T) {
	l := newLedger(t, false)

	_, err := l.service.RecordSearch(context.Background(), services.SearchRecord{Term: "cats", Results: -1, ScopeID: "page-1"})
	assert.True(t, apperrors.IsValidation(err))

	_, err = l.service.RecordSearch(context.Background(), services.SearchRecord{Term: "cats", Results: 1, ElapsedTime: -0.5, ScopeID: "page-1"})
	assert.True(t, apperrors.IsValidation(err))

	_, err = l.service.RecordSearch(context.Background(), services.SearchRecord{Term: "cats", Results: 1})
	assert.True(t, apperrors.IsValidation(err))
}

func TestRecordSuggestion_MinimumLength(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t, true)

	_, err := l.service.RecordSearch(ctx, services.SearchRecord{Term: "ab", Results: 5, ScopeID: "page-1"})
	require.NoError(t, err)

	suggestion, err := l.service.RecordSuggestion(ctx, "ab", "page-1")
	assert.NoError(t, err)
	assert.Nil(t, suggestion)

	_, err = l.suggestions.FindByTerm(ctx, "ab", "page-1")
	assert.True(t, apperrors.IsNotFound(err))

	_, err = l.service.RecordSearch(ctx, services.SearchRecord{Term: "abc", Results: 5, ScopeID: "page-1"})
	require.NoError(t, err)
	stored, err := l.suggestions.FindByTerm(ctx, "abc", "page-1")
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Frequency)
}

func TestRecordSuggestion_CaseInsensitiveUpdatesSameRow(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t, false)

	_, err := l.service.RecordSearch(ctx, services.SearchRecord{Term: "Cat", Results: 2, ScopeID: "page-1"})
	require.NoError(t, err)
	_, err = l.service.RecordSearch(ctx, services.SearchRecord{Term: "cat", Results: 1, ScopeID: "page-1"})
	require.NoError(t, err)
	_, err = l.service.RecordSearch(ctx, services.SearchRecord{Term: "CAT", Results: 0, ScopeID: "page-1"})
	require.NoError(t, err)

	rows, err := l.suggestions.ListByTerm(ctx, "cat", "page-1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "cat", rows[0].Term)
	assert.Equal(t, 2, rows[0].Frequency)
	assert.Equal(t, []entities.SuggestionEventType{
		entities.SuggestionEventCreated,
		entities.SuggestionEventFrequency,
	}, l.bus.EventTypes())
}

func TestRecordSuggestion_ReadsApprovalPolicyPerCall(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t, false)

	_, err := l.service.RecordSearch(ctx, services.SearchRecord{Term: "pending", Results: 1, ScopeID: "page-1"})
	require.NoError(t, err)

	l.flags.SetAutomaticApproval(true)
	_, err = l.service.RecordSearch(ctx, services.SearchRecord{Term: "approved", Results: 1, ScopeID: "page-1"})
	require.NoError(t, err)

	pending, err := l.suggestions.FindByTerm(ctx, "pending", "page-1")
	require.NoError(t, err)
	assert.False(t, pending.Approved)

	approved, err := l.suggestions.FindByTerm(ctx, "approved", "page-1")
	require.NoError(t, err)
	assert.True(t, approved.Approved)
}

func TestRecordSuggestion_ScopesAreIndependent(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t, true)

	for i := 0; i < 3; i++ {
		_, err := l.service.RecordSearch(ctx, services.SearchRecord{Term: "cats", Results: 1, ScopeID: "page-1"})
		require.NoError(t, err)
	}
	_, err := l.service.RecordSearch(ctx, services.SearchRecord{Term: "cats", Results: 1, ScopeID: "page-2"})
	require.NoError(t, err)

	first, err := l.suggestions.FindByTerm(ctx, "cats", "page-1")
	require.NoError(t, err)
	second, err := l.suggestions.FindByTerm(ctx, "cats", "page-2")
	require.NoError(t, err)
	assert.Equal(t, 3, first.Frequency)
	assert.Equal(t, 1, second.Frequency)
}

// lookupBarrier holds every writer's first FindByTerm until all of them have
// looked up, so they all miss the row and race on the insert.
type lookupBarrier struct {
	repositories.SuggestionRepository
	pending atomic.Int32
	arrived sync.WaitGroup
	creates atomic.Int32
}

func newLookupBarrier(repo repositories.SuggestionRepository, writers int) *lookupBarrier {
	b := &lookupBarrier{SuggestionRepository: repo}
	b.pending.Store(int32(writers))
	b.arrived.Add(writers)
	return b
}

func (b *lookupBarrier) FindByTerm(ctx context.Context, term, scopeID string) (*entities.Suggestion, error) {
	suggestion, err := b.SuggestionRepository.FindByTerm(ctx, term, scopeID)
	if b.pending.Add(-1) >= 0 {
		b.arrived.Done()
		b.arrived.Wait()
	}
	return suggestion, err
}

func (b *lookupBarrier) Create(ctx context.Context, suggestion *entities.Suggestion) error {
	b.creates.Add(1)
	return b.SuggestionRepository.Create(ctx, suggestion)
}

func TestRecordSuggestion_ConcurrentInsertRaceConverges(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t, false)

	const writers = 16
	for i := 0; i < writers; i++ {
		require.NoError(t, l.events.LogEvent(ctx, &entities.SearchEvent{Term: "Race", Results: 1, ScopeID: "page-1"}))
	}

	barrier := newLookupBarrier(l.suggestions, writers)
	service := services.NewSearchAnalyticsService(l.events, barrier, l.flags)
	service.SetEventBus(l.bus)

	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			suggestion, err := service.RecordSuggestion(ctx, "Race", "page-1")
			if err == nil && suggestion == nil {
				err = errors.New("no suggestion returned")
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}

	assert.Equal(t, int32(writers), barrier.creates.Load(), "every writer attempts the insert")

	rows, err := l.suggestions.ListByTerm(ctx, "race", "page-1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, writers, rows[0].Frequency)

	counts := map[entities.SuggestionEventType]int{}
	for _, eventType := range l.bus.EventTypes() {
		counts[eventType]++
	}
	assert.Equal(t, 1, counts[entities.SuggestionEventCreated])
	assert.Equal(t, writers-1, counts[entities.SuggestionEventRepaired])
}

func TestRecordSuggestion_SequentialWritersUpdate(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t, false)

	for i := 0; i < 4; i++ {
		require.NoError(t, l.events.LogEvent(ctx, &entities.SearchEvent{Term: "dogs", Results: 2, ScopeID: "page-1"}))
		_, err := l.service.RecordSuggestion(ctx, "Dogs", "page-1")
		require.NoError(t, err)
	}

	rows, err := l.suggestions.ListByTerm(ctx, "dogs", "page-1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 4, rows[0].Frequency)
	assert.Equal(t, []entities.SuggestionEventType{
		entities.SuggestionEventCreated,
		entities.SuggestionEventFrequency,
		entities.SuggestionEventFrequency,
		entities.SuggestionEventFrequency,
	}, l.bus.EventTypes())
}

func TestRecordSuggestion_RepairCollapsesDuplicates(t *testing.T) {
	ctx := context.Background()
	suggestions := new(MockSuggestionRepository)
	events := new(MockSearchAnalyticsRepository)
	flags := services.NewFeatureFlags(config.SearchConfig{AnalyticsEnabled: true})
	service := services.NewSearchAnalyticsService(events, suggestions, flags)

	first := &entities.Suggestion{ID: "s-1", Term: "cats", ScopeID: "page-1", Frequency: 1, Approved: true}
	second := &entities.Suggestion{ID: "s-2", Term: "cats", ScopeID: "page-1", Frequency: 1}
	third := &entities.Suggestion{ID: "s-3", Term: "cats", ScopeID: "page-1", Frequency: 1}

	suggestions.On("FindByTerm", ctx, "cats", "page-1").Return(nil, apperrors.NewNotFoundError("suggestion not found"))
	events.On("CountQualifying", ctx, "cats", "page-1").Return(3, nil)
	suggestions.On("Create", ctx, mock.AnythingOfType("*entities.Suggestion")).
		Return(apperrors.NewConflictError("suggestion already exists for term and scope", errors.New("UNIQUE constraint failed")))
	suggestions.On("ListByTerm", ctx, "cats", "page-1").Return([]*entities.Suggestion{first, second, third}, nil)
	suggestions.On("Delete", ctx, third).Return(nil)
	suggestions.On("Delete", ctx, second).Return(apperrors.NewNotFoundError("suggestion not found"))
	suggestions.On("Update", ctx, first).Return(nil)

	result, err := service.RecordSuggestion(ctx, "CATS", "page-1")
	require.NoError(t, err)
	assert.Equal(t, "s-1", result.ID)
	assert.Equal(t, 3, result.Frequency)
	assert.True(t, result.Approved, "survivor keeps its moderation state")

	suggestions.AssertExpectations(t)
	suggestions.AssertNotCalled(t, "Delete", ctx, first)
	events.AssertNumberOfCalls(t, "CountQualifying", 2)
}

func TestRecordSuggestion_VanishedRowIsRecreated(t *testing.T) {
	ctx := context.Background()
	suggestions := new(MockSuggestionRepository)
	events := new(MockSearchAnalyticsRepository)
	flags := services.NewFeatureFlags(config.SearchConfig{AnalyticsEnabled: true, AutomaticApproval: true})
	service := services.NewSearchAnalyticsService(events, suggestions, flags)

	stale := &entities.Suggestion{ID: "s-1", Term: "cats", ScopeID: "page-1", Frequency: 1}
	notFound := apperrors.NewNotFoundError("suggestion not found")

	suggestions.On("FindByTerm", ctx, "cats", "page-1").Return(stale, nil)
	events.On("CountQualifying", ctx, "cats", "page-1").Return(2, nil)
	suggestions.On("Update", ctx, stale).Return(notFound)
	suggestions.On("ListByTerm", ctx, "cats", "page-1").Return([]*entities.Suggestion{}, nil)
	suggestions.On("Create", ctx, mock.MatchedBy(func(s *entities.Suggestion) bool {
		return s.Term == "cats" && s.Frequency == 2 && s.Approved
	})).Return(nil)

	result, err := service.RecordSuggestion(ctx, "cats", "page-1")
	require.NoError(t, err)
	assert.NotEqual(t, "s-1", result.ID)
	assert.Equal(t, 2, result.Frequency)
	suggestions.AssertExpectations(t)
}

func TestRecordSuggestion_PropagatesOtherFailures(t *testing.T) {
	ctx := context.Background()
	suggestions := new(MockSuggestionRepository)
	events := new(MockSearchAnalyticsRepository)
	flags := services.NewFeatureFlags(config.SearchConfig{AnalyticsEnabled: true})
	service := services.NewSearchAnalyticsService(events, suggestions, flags)

	storeDown := apperrors.NewInternalError("failed to create suggestion", errors.New("connection refused"))
	suggestions.On("FindByTerm", ctx, "cats", "page-1").Return(nil, apperrors.NewNotFoundError("suggestion not found"))
	events.On("CountQualifying", ctx, "cats", "page-1").Return(1, nil)
	suggestions.On("Create", ctx, mock.AnythingOfType("*entities.Suggestion")).Return(storeDown)

	result, err := service.RecordSuggestion(ctx, "cats", "page-1")
	assert.Nil(t, result)
	assert.Equal(t, storeDown, err)
	suggestions.AssertNotCalled(t, "ListByTerm", mock.Anything, mock.Anything, mock.Anything)
}

func TestRecordSearch_PropagatesLogFailure(t *testing.T) {
	ctx := context.Background()
	suggestions := new(MockSuggestionRepository)
	events := new(MockSearchAnalyticsRepository)
	flags := services.NewFeatureFlags(config.SearchConfig{AnalyticsEnabled: true})
	service := services.NewSearchAnalyticsService(events, suggestions, flags)

	events.On("LogEvent", mock.Anything, mock.AnythingOfType("*entities.SearchEvent")).Return(errors.New("disk full"))

	event, err := service.RecordSearch(ctx, services.SearchRecord{Term: "cats", Results: 1, ScopeID: "page-1"})
	assert.Nil(t, event)
	assert.EqualError(t, err, "disk full")
	suggestions.AssertNotCalled(t, "FindByTerm", mock.Anything, mock.Anything, mock.Anything)
}

func TestRecountScope_RebuildsFrequencies(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t, true)

	for i := 0; i < 4; i++ {
		require.NoError(t, l.events.LogEvent(ctx, &entities.SearchEvent{Term: "cats", Results: 1, ScopeID: "page-1"}))
	}
	require.NoError(t, l.events.LogEvent(ctx, &entities.SearchEvent{Term: "dogs", Results: 1, ScopeID: "page-1"}))

	for i, term := range []string{"cats", "dogs"} {
		require.NoError(t, l.suggestions.Create(ctx, &entities.Suggestion{
			ID: fmt.Sprintf("s-%d", i), Term: term, ScopeID: "page-1", Frequency: 1,
		}))
	}

	changed, err := l.service.RecountScope(ctx, "page-1")
	require.NoError(t, err)
	assert.Equal(t, 1, changed)

	cats, err := l.suggestions.FindByTerm(ctx, "cats", "page-1")
	require.NoError(t, err)
	assert.Equal(t, 4, cats.Frequency)
}
