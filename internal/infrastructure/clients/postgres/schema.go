package postgres

import (
	"context"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS search_pages (
	id            TEXT PRIMARY KEY,
	title         TEXT NOT NULL,
	can_view_type TEXT NOT NULL DEFAULT 'Anyone',
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS search_events (
	id              TEXT PRIMARY KEY,
	term            TEXT NOT NULL,
	normalized_term TEXT NOT NULL,
	results         INTEGER NOT NULL CHECK (results >= 0),
	elapsed_time    DOUBLE PRECISION NOT NULL DEFAULT 0,
	engine          TEXT NOT NULL DEFAULT '',
	scope_id        TEXT NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_search_events_scope_term ON search_events (scope_id, normalized_term);

CREATE TABLE IF NOT EXISTS search_suggestions (
	id         TEXT PRIMARY KEY,
	term       TEXT NOT NULL,
	scope_id   TEXT NOT NULL,
	frequency  INTEGER NOT NULL DEFAULT 0 CHECK (frequency >= 0),
	approved   BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	CONSTRAINT search_suggestions_term_scope_key UNIQUE (term, scope_id)
);

CREATE INDEX IF NOT EXISTS idx_search_suggestions_ranking ON search_suggestions (scope_id, approved, frequency DESC);
CREATE INDEX IF NOT EXISTS idx_search_suggestions_prefix ON search_suggestions (scope_id, term text_pattern_ops);
`

// EnsureSchema creates the tables and constraints if they do not exist
func (c *Client) EnsureSchema(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply postgres schema: %w", err)
	}
	return nil
}
