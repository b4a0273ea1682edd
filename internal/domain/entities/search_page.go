package entities

import "time"

// CanViewType controls who may read a search page's suggestions.
type CanViewType string

const (
	CanViewAnyone         CanViewType = "Anyone"
	CanViewLoggedInUsers  CanViewType = "LoggedInUsers"
	CanViewAdministrators CanViewType = "Administrators"
)

// Valid reports whether t is a known view type.
func (t CanViewType) Valid() bool {
	switch t {
	case CanViewAnyone, CanViewLoggedInUsers, CanViewAdministrators:
		return true
	}
	return false
}

// SearchPage is the scope that search events and suggestions belong to.
type SearchPage struct {
	ID          string      `json:"id" db:"id"`
	Title       string      `json:"title" db:"title"`
	CanViewType CanViewType `json:"can_view_type" db:"can_view_type"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
}

// CanView reports whether viewer satisfies the page's view type.
func (p *SearchPage) CanView(viewer Viewer) bool {
	switch p.CanViewType {
	case CanViewAnyone:
		return true
	case CanViewLoggedInUsers:
		return viewer.Authenticated
	case CanViewAdministrators:
		return viewer.Admin
	}
	return false
}
