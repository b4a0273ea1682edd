// Package clients opens the configured suggestion store.
package clients

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/zatekoja/search-suggestions/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/search-suggestions/internal/infrastructure/clients/sqlite"
	"github.com/zatekoja/search-suggestions/pkg/config"
)

// Store is an open, schema-initialized database.
type Store interface {
	DB() *sql.DB
	Dialect() string
	Close() error
}

// OpenStore connects to the driver named in cfg and makes sure the schema exists.
func OpenStore(ctx context.Context, cfg *config.DatabaseConfig) (Store, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		client, err := postgres.NewClient(cfg)
		if err != nil {
			return nil, err
		}
		if err := client.EnsureSchema(ctx); err != nil {
			_ = client.Close()
			return nil, err
		}
		return client, nil
	case config.DriverSQLite:
		return sqlite.NewClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}
