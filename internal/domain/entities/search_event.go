package entities

import (
	"time"
)

// SearchEvent records a single search performed against a search page.
// Events are append-only; they are the source the suggestion frequency is counted from.
type SearchEvent struct {
	ID             string    `json:"id" db:"id"`
	Term           string    `json:"term" db:"term"`
	NormalizedTerm string    `json:"normalized_term" db:"normalized_term"`
	Results        int       `json:"results" db:"results"`
	ElapsedTime    float64   `json:"elapsed_time" db:"elapsed_time"`
	Engine         string    `json:"engine" db:"engine"`
	ScopeID        string    `json:"scope_id" db:"scope_id"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// Qualifies reports whether the event counts towards suggestion frequency.
func (e *SearchEvent) Qualifies() bool {
	return e.Results > 0
}
