package entities

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// MinimumAutocompleteLength is the shortest term that is stored as a
// suggestion or answered by a suggestion query.
const MinimumAutocompleteLength = 3

// Suggestion is the deduplicated (term, scope) autocomplete entry.
// Frequency caches the number of qualifying search events for the pair.
type Suggestion struct {
	ID        string    `json:"id" db:"id"`
	Term      string    `json:"term" db:"term"`
	ScopeID   string    `json:"scope_id" db:"scope_id"`
	Frequency int       `json:"frequency" db:"frequency"`
	Approved  bool      `json:"approved" db:"approved"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NormalizeTerm lowercases a term for storage and lookup.
func NormalizeTerm(term string) string {
	return strings.ToLower(term)
}

// MeetsMinimumLength reports whether term is long enough to autocomplete.
func MeetsMinimumLength(term string) bool {
	return utf8.RuneCountInString(term) >= MinimumAutocompleteLength
}

// ApprovalStatus returns the human readable moderation state.
func (s *Suggestion) ApprovalStatus() string {
	if s.Approved {
		return "Approved"
	}
	return "Disapproved"
}

// ApprovalMessage confirms the current moderation state, e.g. `Approved "cats"!`.
func (s *Suggestion) ApprovalMessage() string {
	return fmt.Sprintf("%s %q!", s.ApprovalStatus(), s.Term)
}
