package providers

import (
	"context"

	"github.com/zatekoja/search-suggestions/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to suggestion events
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.SuggestionEvent) error

	// Subscribe subscribes to events on a channel until ctx is done
	Subscribe(ctx context.Context, channel string) (<-chan *entities.SuggestionEvent, error)

	// Unsubscribe unsubscribes from a channel
	Unsubscribe(ctx context.Context, channel string) error

	// Close closes the event bus and all subscriptions
	Close() error
}

// EventChannelSuggestionPrefix prefixes the per-scope suggestion channels
const EventChannelSuggestionPrefix = "suggestions:"

// GetSuggestionChannel returns the channel name for a scope
func GetSuggestionChannel(scopeID string) string {
	return EventChannelSuggestionPrefix + scopeID
}
