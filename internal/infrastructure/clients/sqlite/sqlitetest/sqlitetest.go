// Package sqlitetest opens throwaway SQLite databases for tests.
package sqlitetest

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zatekoja/search-suggestions/internal/infrastructure/clients/sqlite"
	"github.com/zatekoja/search-suggestions/pkg/config"
)

// NewClient returns a schema-initialized database that is removed when the test ends.
func NewClient(t *testing.T) *sqlite.Client {
	t.Helper()

	client, err := sqlite.NewClient(&config.DatabaseConfig{
		Driver:     config.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "suggestions.db"),
	})
	require.NoError(t, err, "Failed to open sqlite database")

	t.Cleanup(func() { _ = client.Close() })
	return client
}
