package postgres

import (
	"context"
	"io/fs"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPoolWithConfig_InvalidURL(t *testing.T) {
	_, err := NewPoolWithConfig(context.Background(), PoolConfig{DatabaseURL: "not-a-url"})
	assert.Error(t, err)
}

func TestNewPoolWithConfig_PingFailure(t *testing.T) {
	cfg := PoolConfig{
		DatabaseURL:    "postgres://invalid:5432/db",
		MaxConns:       1,
		ConnectTimeout: 200 * time.Millisecond,
	}

	_, err := NewPoolWithConfig(context.Background(), cfg)
	assert.Error(t, err)
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	ups, err := fs.Glob(migrationsFS, "migrations/*.up.sql")
	require.NoError(t, err)
	downs, err := fs.Glob(migrationsFS, "migrations/*.down.sql")
	require.NoError(t, err)

	require.NotEmpty(t, ups)
	assert.Len(t, downs, len(ups))

	schema, err := fs.ReadFile(migrationsFS, "migrations/000001_init.up.sql")
	require.NoError(t, err)
	for _, table := range []string{"users", "accounts", "categories", "transactions", "monthly_balances", "monthly_locks", "liabilities"} {
		assert.Contains(t, string(schema), "CREATE TABLE "+table+" (")
	}
}
