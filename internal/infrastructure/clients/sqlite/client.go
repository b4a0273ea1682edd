// Package sqlite provides an embedded store with the same schema and
// constraints as the PostgreSQL deployment.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/search-suggestions/pkg/config"
	_ "modernc.org/sqlite"
)

// Dialect is the goqu dialect matching this client
const Dialect = "sqlite3"

// Client represents an embedded SQLite database client
type Client struct {
	db *sql.DB
}

// NewClient opens or creates the database at cfg.SQLitePath and applies the schema.
// Parent directories are created if they do not exist.
func NewClient(cfg *config.DatabaseConfig) (*Client, error) {
	if dir := filepath.Dir(cfg.SQLitePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", cfg.SQLitePath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite serializes writers; a single connection avoids SQLITE_BUSY churn.
	db.SetMaxOpenConns(1)

	client := &Client{db: db}
	if err := client.EnsureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	log.Info().Str("path", cfg.SQLitePath).Msg("Opened SQLite database")
	return client, nil
}

// DB returns the underlying database connection
func (c *Client) DB() *sql.DB {
	return c.db
}

// Dialect returns the goqu dialect name
func (c *Client) Dialect() string {
	return Dialect
}

// Close closes the database connection
func (c *Client) Close() error {
	return c.db.Close()
}

// Ping verifies the connection to the database
func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}
