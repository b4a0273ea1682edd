package sqlite

import (
	"context"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS search_pages (
	id            TEXT PRIMARY KEY,
	title         TEXT NOT NULL,
	can_view_type TEXT NOT NULL DEFAULT 'Anyone',
	created_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS search_events (
	id              TEXT PRIMARY KEY,
	term            TEXT NOT NULL,
	normalized_term TEXT NOT NULL,
	results         INTEGER NOT NULL CHECK (results >= 0),
	elapsed_time    REAL NOT NULL DEFAULT 0,
	engine          TEXT NOT NULL DEFAULT '',
	scope_id        TEXT NOT NULL,
	created_at      TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_search_events_scope_term ON search_events (scope_id, normalized_term);

CREATE TABLE IF NOT EXISTS search_suggestions (
	id         TEXT PRIMARY KEY,
	term       TEXT NOT NULL,
	scope_id   TEXT NOT NULL,
	frequency  INTEGER NOT NULL DEFAULT 0 CHECK (frequency >= 0),
	approved   BOOLEAN NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE (term, scope_id)
);

CREATE INDEX IF NOT EXISTS idx_search_suggestions_ranking ON search_suggestions (scope_id, approved, frequency DESC);
`

// EnsureSchema creates the tables and constraints if they do not exist
func (c *Client) EnsureSchema(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply sqlite schema: %w", err)
	}
	return nil
}
