package entities

import "time"

// SuggestionEventType represents what happened to a suggestion
type SuggestionEventType string

const (
	SuggestionEventCreated         SuggestionEventType = "suggestion_created"
	SuggestionEventFrequency       SuggestionEventType = "suggestion_frequency_updated"
	SuggestionEventRepaired        SuggestionEventType = "suggestion_repaired"
	SuggestionEventApprovalToggled SuggestionEventType = "suggestion_approval_toggled"
)

// SuggestionEvent is published whenever the suggestion ledger changes.
type SuggestionEvent struct {
	ID           string              `json:"id"`
	EventType    SuggestionEventType `json:"event_type"`
	SuggestionID string              `json:"suggestion_id"`
	ScopeID      string              `json:"scope_id"`
	Term         string              `json:"term"`
	Frequency    int                 `json:"frequency"`
	Approved     bool                `json:"approved"`
	Timestamp    time.Time           `json:"timestamp"`
}

// NewSuggestionEvent snapshots a suggestion into an event.
func NewSuggestionEvent(eventType SuggestionEventType, suggestion *Suggestion) *SuggestionEvent {
	return &SuggestionEvent{
		EventType:    eventType,
		SuggestionID: suggestion.ID,
		ScopeID:      suggestion.ScopeID,
		Term:         suggestion.Term,
		Frequency:    suggestion.Frequency,
		Approved:     suggestion.Approved,
		Timestamp:    time.Now().UTC(),
	}
}
