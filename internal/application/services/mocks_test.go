package services_test

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"
	"github.com/zatekoja/search-suggestions/internal/domain/entities"
	"github.com/zatekoja/search-suggestions/internal/domain/repositories"
)

// MockSuggestionRepository is a testify mock of SuggestionRepository
type MockSuggestionRepository struct {
	mock.Mock
}

func (m *MockSuggestionRepository) GetByID(ctx context.Context, id string) (*entities.Suggestion, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Suggestion), args.Error(1)
}

func (m *MockSuggestionRepository) FindByTerm(ctx context.Context, term, scopeID string) (*entities.Suggestion, error) {
	args := m.Called(ctx, term, scopeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Suggestion), args.Error(1)
}

func (m *MockSuggestionRepository) ListByTerm(ctx context.Context, term, scopeID string) ([]*entities.Suggestion, error) {
	args := m.Called(ctx, term, scopeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Suggestion), args.Error(1)
}

func (m *MockSuggestionRepository) ListByScope(ctx context.Context, scopeID string) ([]*entities.Suggestion, error) {
	args := m.Called(ctx, scopeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Suggestion), args.Error(1)
}

func (m *MockSuggestionRepository) Search(ctx context.Context, filter repositories.SuggestionFilter) ([]*entities.Suggestion, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Suggestion), args.Error(1)
}

func (m *MockSuggestionRepository) Create(ctx context.Context, suggestion *entities.Suggestion) error {
	return m.Called(ctx, suggestion).Error(0)
}

func (m *MockSuggestionRepository) Update(ctx context.Context, suggestion *entities.Suggestion) error {
	return m.Called(ctx, suggestion).Error(0)
}

func (m *MockSuggestionRepository) Delete(ctx context.Context, suggestion *entities.Suggestion) error {
	return m.Called(ctx, suggestion).Error(0)
}

// MockSearchAnalyticsRepository is a testify mock of SearchAnalyticsRepository
type MockSearchAnalyticsRepository struct {
	mock.Mock
}

func (m *MockSearchAnalyticsRepository) LogEvent(ctx context.Context, event *entities.SearchEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *MockSearchAnalyticsRepository) CountQualifying(ctx context.Context, normalizedTerm, scopeID string) (int, error) {
	args := m.Called(ctx, normalizedTerm, scopeID)
	return args.Int(0), args.Error(1)
}

func (m *MockSearchAnalyticsRepository) GetZeroResultQueries(ctx context.Context, scopeID string, limit int) ([]*entities.SearchEvent, error) {
	args := m.Called(ctx, scopeID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.SearchEvent), args.Error(1)
}

// MockEventBus records published events
type MockEventBus struct {
	mu        sync.Mutex
	published []*entities.SuggestionEvent
	channels  []string
}

func NewMockEventBus() *MockEventBus {
	return &MockEventBus{}
}

func (m *MockEventBus) Publish(ctx context.Context, channel string, event *entities.SuggestionEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, event)
	m.channels = append(m.channels, channel)
	return nil
}

func (m *MockEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.SuggestionEvent, error) {
	ch := make(chan *entities.SuggestionEvent)
	close(ch)
	return ch, nil
}

func (m *MockEventBus) Unsubscribe(ctx context.Context, channel string) error {
	return nil
}

func (m *MockEventBus) Close() error {
	return nil
}

func (m *MockEventBus) EventTypes() []entities.SuggestionEventType {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]entities.SuggestionEventType, len(m.published))
	for i, event := range m.published {
		types[i] = event.EventType
	}
	return types
}

func (m *MockEventBus) Channels() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.channels...)
}
